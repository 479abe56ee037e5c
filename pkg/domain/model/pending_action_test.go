package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

func TestNewPendingAction(t *testing.T) {
	action := model.NewPendingAction("close_ticket",
		map[string]any{"ticket_id": "T-123"},
		types.RiskLevelLow, "alice", "sess-1", 5*time.Minute)

	gt.Value(t, action.ID.String()).NotEqual("")
	gt.Value(t, action.Status).Equal(types.ActionStatusPending)
	gt.Value(t, action.OwnerID).Equal(types.UserID("alice"))
	gt.Value(t, action.SessionID).Equal(types.SessionID("sess-1"))
	gt.Value(t, action.ExpiresAt).Equal(action.CreatedAt.Add(5 * time.Minute))

	// Two records staged back to back never share an ID
	other := model.NewPendingAction("close_ticket", nil,
		types.RiskLevelLow, "alice", "sess-1", 5*time.Minute)
	gt.Value(t, other.ID).NotEqual(action.ID)
}

func TestIsExpired(t *testing.T) {
	action := model.NewPendingAction("close_ticket", nil,
		types.RiskLevelLow, "alice", "", time.Minute)

	gt.Bool(t, action.IsExpired(action.CreatedAt)).False()
	gt.Bool(t, action.IsExpired(action.ExpiresAt.Add(-time.Nanosecond))).False()
	// Exactly at ExpiresAt the record is already expired
	gt.Bool(t, action.IsExpired(action.ExpiresAt)).True()
	gt.Bool(t, action.IsExpired(action.ExpiresAt.Add(time.Hour))).True()
}

func TestEffectiveStatus(t *testing.T) {
	action := model.NewPendingAction("close_ticket", nil,
		types.RiskLevelLow, "alice", "", time.Minute)

	gt.Value(t, action.EffectiveStatus(action.CreatedAt)).Equal(types.ActionStatusPending)
	gt.Value(t, action.EffectiveStatus(action.ExpiresAt)).Equal(types.ActionStatusExpired)

	// Only PENDING derives EXPIRED; settled records keep their status
	action.Status = types.ActionStatusConfirmed
	gt.Value(t, action.EffectiveStatus(action.ExpiresAt)).Equal(types.ActionStatusConfirmed)
	action.Status = types.ActionStatusCancelled
	gt.Value(t, action.EffectiveStatus(action.ExpiresAt)).Equal(types.ActionStatusCancelled)
}

func TestIndexes(t *testing.T) {
	withSession := model.NewPendingAction("close_ticket", nil,
		types.RiskLevelLow, "alice", "sess-1", time.Minute)
	indexes := withSession.Indexes()
	gt.Array(t, indexes).Length(2).
		Has(model.UserIndex("alice")).
		Has(model.SessionIndex("sess-1"))

	withoutSession := model.NewPendingAction("close_ticket", nil,
		types.RiskLevelLow, "alice", "", time.Minute)
	gt.Array(t, withoutSession.Indexes()).Length(1).
		Has(model.UserIndex("alice"))
}

func TestClone(t *testing.T) {
	action := model.NewPendingAction("close_ticket",
		map[string]any{"ticket_id": "T-123"},
		types.RiskLevelLow, "alice", "sess-1", time.Minute)

	copied := action.Clone()
	copied.Status = types.ActionStatusCancelled
	copied.Args["ticket_id"] = "T-999"

	gt.Value(t, action.Status).Equal(types.ActionStatusPending)
	gt.Value(t, action.Args["ticket_id"]).Equal("T-123")
}

func TestIndexKeyString(t *testing.T) {
	gt.Value(t, model.UserIndex("alice").String()).Equal("user:alice")
	gt.Value(t, model.SessionIndex("sess-1").String()).Equal("session:sess-1")
}
