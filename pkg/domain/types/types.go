package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ActionID represents a unique identifier for a staged pending action.
// IDs are generated from UUIDv4 (crypto/rand backed), so freshness is
// guaranteed by construction and uniqueness is not checked at write time.
type ActionID string

// NewActionID generates a new random ActionID
func NewActionID() ActionID {
	return ActionID(uuid.NewString())
}

// Validate checks if the ActionID is valid
func (x ActionID) Validate() error {
	if x == "" {
		return goerr.New("action ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ActionID
func (x ActionID) String() string {
	return string(x)
}

// UserID represents the principal allowed to confirm or cancel a staged action
type UserID string

// Validate checks if the UserID is valid
func (x UserID) Validate() error {
	if x == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (x UserID) String() string {
	return string(x)
}

// SessionID is an optional grouping key tying staged actions to a
// conversation context. An empty SessionID means "no session".
type SessionID string

// String returns the string representation of SessionID
func (x SessionID) String() string {
	return string(x)
}

// IndexName identifies a secondary index maintained by the action store
type IndexName string

const (
	// IndexUser indexes pending actions by owner user ID
	IndexUser IndexName = "user"
	// IndexSession indexes pending actions by session ID
	IndexSession IndexName = "session"
)

// String returns the string representation of IndexName
func (x IndexName) String() string {
	return string(x)
}
