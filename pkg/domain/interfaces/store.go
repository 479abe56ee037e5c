package interfaces

import (
	"context"
	"time"

	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

// TransitionCondition is the predicate evaluated inside the store's atomic
// primitive. All checks happen in one indivisible step with the write; a
// zero-value field disables its check.
type TransitionCondition struct {
	// FromStatus is the status the record must currently hold
	FromStatus types.ActionStatus
	// Owner, when non-empty, must match the record's OwnerID
	Owner types.UserID
	// Now, when non-zero, requires the record to not be expired at this instant
	Now time.Time
}

// ActionStore is the ephemeral TTL-bounded storage the confirmation engine
// is built on. Implementations must guarantee that CompareAndTransition is
// atomic with respect to all other calls on the same action ID: of any
// number of concurrent callers passing the same condition, at most one
// observes success. Secondary indexes are derived data, eventually
// consistent, and self-healing on read; they are never authoritative.
type ActionStore interface {
	// Put unconditionally creates a record with the given TTL and inserts its
	// ID into each index set. The caller guarantees key freshness (random ID),
	// so no uniqueness conflict handling is performed.
	Put(ctx context.Context, action *model.PendingAction, ttl time.Duration, indexes []model.IndexKey) error

	// Get returns the record, types.ErrRecordNotFound if absent, or
	// types.ErrRecordExpired if present but past its TTL.
	Get(ctx context.Context, id types.ActionID) (*model.PendingAction, error)

	// Delete removes the primary record and best-effort removes the ID from
	// each given index set.
	Delete(ctx context.Context, id types.ActionID, indexes []model.IndexKey) error

	// CompareAndTransition atomically checks cond against the current record
	// and, on success, applies apply to a copy and persists it. Rejections are
	// classified: types.ErrRecordNotFound (absent), types.ErrRecordExpired
	// (present, past TTL), types.ErrOwnerMismatch, types.ErrStatusConflict
	// (status differs from cond.FromStatus). The returned record is the
	// post-transition state.
	CompareAndTransition(ctx context.Context, id types.ActionID, cond TransitionCondition, apply func(*model.PendingAction)) (*model.PendingAction, error)

	// GetByIndex resolves every live member of the index set. Members whose
	// primary record was evicted are silently pruned from the set as a side
	// effect and excluded from the result; logically expired records are
	// excluded but left for TTL eviction. Callers never observe dangling
	// references.
	GetByIndex(ctx context.Context, index model.IndexKey) ([]*model.PendingAction, error)

	// RemoveFromIndex removes one ID from an index set. Used on terminal
	// transitions; best-effort, since GetByIndex self-heals anyway.
	RemoveFromIndex(ctx context.Context, index model.IndexKey, id types.ActionID) error

	// SetTTL replaces the record's expiry with now + ttl. Not used by the
	// default confirmation flow; required for completeness and testing.
	SetTTL(ctx context.Context, id types.ActionID, ttl time.Duration) error

	// Close releases backend resources
	Close() error
}
