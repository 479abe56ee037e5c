package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

func TestActionStatusValidity(t *testing.T) {
	for _, status := range types.AllActionStatuses() {
		gt.Bool(t, status.IsValid()).True()
	}
	gt.Bool(t, types.ActionStatus("RUNNING").IsValid()).False()
	gt.Bool(t, types.ActionStatus("").IsValid()).False()
}

func TestActionStatusTerminal(t *testing.T) {
	tests := []struct {
		status   types.ActionStatus
		terminal bool
	}{
		{types.ActionStatusPending, false},
		{types.ActionStatusExecuting, false},
		{types.ActionStatusConfirmed, true},
		{types.ActionStatusCancelled, true},
		{types.ActionStatusExpired, true},
		{types.ActionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			gt.Value(t, tt.status.IsTerminal()).Equal(tt.terminal)
		})
	}
}

func TestActionStatusTransitions(t *testing.T) {
	allowed := map[types.ActionStatus][]types.ActionStatus{
		types.ActionStatusPending: {
			types.ActionStatusExecuting,
			types.ActionStatusCancelled,
			types.ActionStatusExpired,
		},
		types.ActionStatusExecuting: {
			types.ActionStatusConfirmed,
			types.ActionStatusFailed,
		},
	}

	for _, from := range types.AllActionStatuses() {
		for _, to := range types.AllActionStatuses() {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			gt.Value(t, from.CanTransitionTo(to)).Equal(want)
		}
	}
}

func TestParseActionStatus(t *testing.T) {
	status, err := types.ParseActionStatus("PENDING")
	gt.NoError(t, err)
	gt.Value(t, status).Equal(types.ActionStatusPending)

	_, err = types.ParseActionStatus("pending")
	gt.Value(t, err).NotNil()
}
