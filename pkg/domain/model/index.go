package model

import (
	"fmt"

	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

// IndexKey addresses one secondary index set: all action IDs sharing the
// same (name, value) pair. Index entries are derived data and never
// authoritative; a member may point at a record that TTL eviction already
// removed, and readers must re-validate existence.
type IndexKey struct {
	Name  types.IndexName
	Value string
}

// UserIndex returns the index key grouping actions by owner
func UserIndex(userID types.UserID) IndexKey {
	return IndexKey{Name: types.IndexUser, Value: userID.String()}
}

// SessionIndex returns the index key grouping actions by session
func SessionIndex(sessionID types.SessionID) IndexKey {
	return IndexKey{Name: types.IndexSession, Value: sessionID.String()}
}

// String returns a stable "name:value" form usable as a document ID
func (k IndexKey) String() string {
	return fmt.Sprintf("%s:%s", k.Name, k.Value)
}
