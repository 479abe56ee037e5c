package types

import "fmt"

// ActionStatus represents the lifecycle state of a staged pending action
type ActionStatus string

const (
	// ActionStatusPending means the action is staged and awaiting approval
	ActionStatusPending ActionStatus = "PENDING"
	// ActionStatusExecuting is the transient claim marker held by the single
	// confirm caller that won the atomic transition
	ActionStatusExecuting ActionStatus = "EXECUTING"
	// ActionStatusConfirmed means the operation was executed successfully
	ActionStatusConfirmed ActionStatus = "CONFIRMED"
	// ActionStatusCancelled means the owner cancelled the action before execution
	ActionStatusCancelled ActionStatus = "CANCELLED"
	// ActionStatusExpired is derived when a PENDING record outlives its TTL.
	// It is never written to the store; eviction happens via TTL.
	ActionStatusExpired ActionStatus = "EXPIRED"
	// ActionStatusFailed means the executor raised an error. The action is not
	// reset to PENDING and is never retried by the engine.
	ActionStatusFailed ActionStatus = "FAILED"
)

// AllActionStatuses returns all valid action statuses
func AllActionStatuses() []ActionStatus {
	return []ActionStatus{
		ActionStatusPending,
		ActionStatusExecuting,
		ActionStatusConfirmed,
		ActionStatusCancelled,
		ActionStatusExpired,
		ActionStatusFailed,
	}
}

// IsValid checks if the action status is valid
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusPending,
		ActionStatusExecuting,
		ActionStatusConfirmed,
		ActionStatusCancelled,
		ActionStatusExpired,
		ActionStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status can never transition again.
// EXECUTING is transient: it must settle into CONFIRMED or FAILED.
func (s ActionStatus) IsTerminal() bool {
	switch s {
	case ActionStatusConfirmed, ActionStatusCancelled, ActionStatusExpired, ActionStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the forward-only state machine allows
// moving from s to next. PENDING is never re-entered.
func (s ActionStatus) CanTransitionTo(next ActionStatus) bool {
	switch s {
	case ActionStatusPending:
		return next == ActionStatusExecuting || next == ActionStatusCancelled || next == ActionStatusExpired
	case ActionStatusExecuting:
		return next == ActionStatusConfirmed || next == ActionStatusFailed
	default:
		return false
	}
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus parses a string into an ActionStatus
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid action status: %s", s)
	}
	return status, nil
}
