package model

import (
	"time"

	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

// PendingAction is one staged mutating operation awaiting human approval.
// Records are created only by prepare, mutated only by the store's atomic
// conditional transition, and disappear via TTL eviction.
type PendingAction struct {
	ID        types.ActionID
	OwnerID   types.UserID    // principal allowed to confirm/cancel
	SessionID types.SessionID // optional conversation grouping
	Operation string          // which external operation to run
	Args      map[string]any  `masq:"secret"` // opaque payload, uninterpreted by the engine
	Risk      types.RiskLevel
	Preview   string // rendered human-readable text; may be empty
	Status    types.ActionStatus
	Result    string // summary of the execution result, set on CONFIRMED
	Error     string // executor error summary, set on FAILED
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewPendingAction builds a PENDING record with a fresh random ID and the
// given TTL window.
func NewPendingAction(operation string, args map[string]any, risk types.RiskLevel, owner types.UserID, session types.SessionID, ttl time.Duration) *PendingAction {
	now := time.Now().UTC()
	return &PendingAction{
		ID:        types.NewActionID(),
		OwnerID:   owner,
		SessionID: session,
		Operation: operation,
		Args:      args,
		Risk:      risk,
		Status:    types.ActionStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the record's TTL has elapsed at the given instant
func (a *PendingAction) IsExpired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

// EffectiveStatus derives the externally visible status: a PENDING record
// past its TTL reads as EXPIRED even before the store physically evicts it.
func (a *PendingAction) EffectiveStatus(now time.Time) types.ActionStatus {
	if a.Status == types.ActionStatusPending && a.IsExpired(now) {
		return types.ActionStatusExpired
	}
	return a.Status
}

// Indexes returns the secondary index memberships for this record: always
// the owner index, plus the session index when a session is present.
func (a *PendingAction) Indexes() []IndexKey {
	indexes := []IndexKey{UserIndex(a.OwnerID)}
	if a.SessionID != "" {
		indexes = append(indexes, SessionIndex(a.SessionID))
	}
	return indexes
}

// Clone returns a deep copy so store backends never hand out shared
// mutable state.
func (a *PendingAction) Clone() *PendingAction {
	copied := *a
	if a.Args != nil {
		copied.Args = make(map[string]any, len(a.Args))
		for k, v := range a.Args {
			copied.Args[k] = v
		}
	}
	return &copied
}

// ExecutionResult is what a ToolExecutor returns to the engine. Summary is
// persisted on the record; Data is passed through to the caller only.
type ExecutionResult struct {
	Summary string
	Data    map[string]any
}
