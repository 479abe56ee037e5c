package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/model/config"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
	"github.com/stagehand-hq/stagehand/pkg/repository/memory"
	"github.com/stagehand-hq/stagehand/pkg/service/executor"
	"github.com/stagehand-hq/stagehand/pkg/usecase"
)

type countingExecutor struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (x *countingExecutor) Execute(ctx context.Context, operation string, args map[string]any) (*model.ExecutionResult, error) {
	x.calls.Add(1)
	if x.delay > 0 {
		time.Sleep(x.delay)
	}
	if x.err != nil {
		return nil, x.err
	}
	return &model.ExecutionResult{
		Summary: "executed " + operation,
		Data:    map[string]any{"ok": true},
	}, nil
}

type captureNotifier struct {
	pending  chan *model.PendingAction
	resolved chan *model.PendingAction
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{
		pending:  make(chan *model.PendingAction, 8),
		resolved: make(chan *model.PendingAction, 8),
	}
}

func (x *captureNotifier) NotifyPending(ctx context.Context, action *model.PendingAction) error {
	x.pending <- action
	return nil
}

func (x *captureNotifier) NotifyResolved(ctx context.Context, action *model.PendingAction) error {
	x.resolved <- action
	return nil
}

func waitNotify(t *testing.T, ch chan *model.PendingAction) *model.PendingAction {
	t.Helper()
	select {
	case action := <-ch:
		return action
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

type staticPreview struct {
	text string
	err  error
}

func (x *staticPreview) Render(ctx context.Context, operation string, args map[string]any) (string, error) {
	return x.text, x.err
}

func newLedger(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *countingExecutor) {
	t.Helper()
	exec := &countingExecutor{}
	registry := executor.NewRegistry()
	gt.NoError(t, registry.Register("close_ticket", exec)).Required()

	base := []usecase.Option{usecase.WithRegistry(registry)}
	return usecase.New(memory.New(), append(base, opts...)...), exec
}

func prepare(t *testing.T, uc *usecase.UseCases, user types.UserID, session types.SessionID) *model.PendingAction {
	t.Helper()
	action, err := uc.Prepare(context.Background(), usecase.PrepareInput{
		Operation: "close_ticket",
		Args:      map[string]any{"ticket_id": "T-1"},
		Risk:      types.RiskLevelHigh,
		UserID:    user,
		SessionID: session,
	})
	gt.NoError(t, err).Required()
	return action
}

func TestPrepareAndConfirm(t *testing.T) {
	uc, exec := newLedger(t)
	ctx := context.Background()

	action := prepare(t, uc, "u1", "s1")
	gt.Value(t, action.Status).Equal(types.ActionStatusPending)
	gt.Value(t, action.Preview).Equal("Execute close_ticket (ticket_id=T-1)")

	// Staged action shows up in the pending list
	pending, err := uc.ListPending(ctx, "u1", "")
	gt.NoError(t, err).Required()
	gt.Array(t, pending).Length(1)
	gt.Value(t, pending[0].ID).Equal(action.ID)

	confirmed, err := uc.Confirm(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, confirmed.Status).Equal(types.ActionStatusConfirmed)
	gt.Value(t, confirmed.Result).Equal("executed close_ticket")
	gt.Number(t, exec.calls.Load()).Equal(1)

	// Terminal actions leave the pending list
	pending, err = uc.ListPending(ctx, "u1", "")
	gt.NoError(t, err).Required()
	gt.Array(t, pending).Length(0)

	// The record itself is still readable
	got, err := uc.Get(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.ActionStatusConfirmed)
}

func TestConcurrentConfirmExecutesOnce(t *testing.T) {
	uc, exec := newLedger(t)
	exec.delay = 10 * time.Millisecond
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	const callers = 16
	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Confirm(ctx, "u1", action.ID)
			results[i] = err
		}()
	}
	wg.Wait()

	var winners, losers int
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		gt.Error(t, err).Is(usecase.ErrAlreadyProcessed)
		losers++
	}
	gt.Number(t, winners).Equal(1)
	gt.Number(t, losers).Equal(callers - 1)
	gt.Number(t, exec.calls.Load()).Equal(1)

	got, err := uc.Get(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.ActionStatusConfirmed)
}

func TestConfirmAfterExpiry(t *testing.T) {
	uc, exec := newLedger(t, usecase.WithConfirmConfig(&config.ConfirmConfig{
		DefaultTTL: 50 * time.Millisecond,
	}))
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	time.Sleep(80 * time.Millisecond)

	_, err := uc.Confirm(ctx, "u1", action.ID)
	gt.Error(t, err).Is(usecase.ErrNotFoundOrExpired)
	gt.Number(t, exec.calls.Load()).Equal(0)

	// Expired actions are invisible to the pending list as well
	pending, err := uc.ListPending(ctx, "u1", "")
	gt.NoError(t, err).Required()
	gt.Array(t, pending).Length(0)
}

func TestConfirmUnknownID(t *testing.T) {
	uc, exec := newLedger(t)

	_, err := uc.Confirm(context.Background(), "u1", types.NewActionID())
	gt.Error(t, err).Is(usecase.ErrNotFoundOrExpired)
	gt.Number(t, exec.calls.Load()).Equal(0)
}

func TestConfirmByAnotherUser(t *testing.T) {
	uc, exec := newLedger(t)
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	_, err := uc.Confirm(ctx, "u2", action.ID)
	gt.Error(t, err).Is(usecase.ErrUnauthorized)
	gt.Number(t, exec.calls.Load()).Equal(0)

	// Still confirmable by the staging user
	_, err = uc.Confirm(ctx, "u1", action.ID)
	gt.NoError(t, err)
}

func TestCancel(t *testing.T) {
	uc, exec := newLedger(t)
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	ok, err := uc.Cancel(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, ok).True()

	got, err := uc.Get(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.ActionStatusCancelled)

	// Confirm after cancel is a status conflict, not an execution
	_, err = uc.Confirm(ctx, "u1", action.ID)
	gt.Error(t, err).Is(usecase.ErrAlreadyProcessed)
	gt.Number(t, exec.calls.Load()).Equal(0)

	// Repeated cancel is idempotent
	ok, err = uc.Cancel(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, ok).False()
}

func TestCancelAfterConfirm(t *testing.T) {
	uc, exec := newLedger(t)
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	_, err := uc.Confirm(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()

	ok, err := uc.Cancel(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, ok).False()
	gt.Number(t, exec.calls.Load()).Equal(1)

	got, err := uc.Get(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.ActionStatusConfirmed)
}

func TestCancelByAnotherUser(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	_, err := uc.Cancel(ctx, "u2", action.ID)
	gt.Error(t, err).Is(usecase.ErrUnauthorized)

	pending, err := uc.ListPending(ctx, "u1", "")
	gt.NoError(t, err).Required()
	gt.Array(t, pending).Length(1)
}

func TestExecutorFailureSettlesFailed(t *testing.T) {
	uc, exec := newLedger(t)
	exec.err = errors.New("upstream rejected the request")
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	_, err := uc.Confirm(ctx, "u1", action.ID)
	gt.Error(t, err).Is(usecase.ErrExecutorFailure)
	gt.Number(t, exec.calls.Load()).Equal(1)

	got, err := uc.Get(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.ActionStatusFailed)
	gt.Value(t, got.Error).Equal("upstream rejected the request")

	// A failed execution is never retried
	_, err = uc.Confirm(ctx, "u1", action.ID)
	gt.Error(t, err).Is(usecase.ErrAlreadyProcessed)
	gt.Number(t, exec.calls.Load()).Equal(1)
}

func TestConfirmUnregisteredOperation(t *testing.T) {
	uc := usecase.New(memory.New())
	ctx := context.Background()

	action, err := uc.Prepare(ctx, usecase.PrepareInput{
		Operation: "delete_everything",
		Args:      map[string]any{},
		Risk:      types.RiskLevelHigh,
		UserID:    "u1",
	})
	gt.NoError(t, err).Required()

	_, err = uc.Confirm(ctx, "u1", action.ID)
	gt.Error(t, err).Is(usecase.ErrExecutorFailure)

	got, err := uc.Get(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.ActionStatusFailed)
}

func TestPrepareValidation(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	cases := map[string]usecase.PrepareInput{
		"empty operation": {
			UserID: "u1",
		},
		"empty user": {
			Operation: "close_ticket",
		},
		"invalid risk": {
			Operation: "close_ticket",
			UserID:    "u1",
			Risk:      "CATASTROPHIC",
		},
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Prepare(ctx, input)
			gt.Error(t, err).Is(usecase.ErrInvalidRequest)
		})
	}
}

func TestPrepareWithCatalog(t *testing.T) {
	catalog := config.NewCatalog([]config.Operation{
		{ID: "close_ticket", Name: "Close ticket", Risk: types.RiskLevelLow},
	})
	uc, _ := newLedger(t, usecase.WithCatalog(catalog))
	ctx := context.Background()

	t.Run("unknown operation rejected", func(t *testing.T) {
		_, err := uc.Prepare(ctx, usecase.PrepareInput{
			Operation: "open_ticket",
			UserID:    "u1",
		})
		gt.Error(t, err).Is(usecase.ErrInvalidRequest)
	})

	t.Run("risk defaults to catalog entry", func(t *testing.T) {
		action, err := uc.Prepare(ctx, usecase.PrepareInput{
			Operation: "close_ticket",
			UserID:    "u1",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, action.Risk).Equal(types.RiskLevelLow)
	})

	t.Run("explicit risk wins over catalog", func(t *testing.T) {
		action, err := uc.Prepare(ctx, usecase.PrepareInput{
			Operation: "close_ticket",
			UserID:    "u1",
			Risk:      types.RiskLevelHigh,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, action.Risk).Equal(types.RiskLevelHigh)
	})
}

func TestPreviewRenderer(t *testing.T) {
	t.Run("rendered preview is stored", func(t *testing.T) {
		uc, _ := newLedger(t, usecase.WithPreviewRenderer(&staticPreview{
			text: "Close ticket T-1 for customer ACME",
		}))
		action := prepare(t, uc, "u1", "")
		gt.Value(t, action.Preview).Equal("Close ticket T-1 for customer ACME")
	})

	t.Run("renderer failure falls back", func(t *testing.T) {
		uc, _ := newLedger(t, usecase.WithPreviewRenderer(&staticPreview{
			err: errors.New("model unavailable"),
		}))
		action := prepare(t, uc, "u1", "")
		gt.Value(t, action.Preview).Equal("Execute close_ticket (ticket_id=T-1)")
	})
}

func TestListPending(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	first := prepare(t, uc, "u1", "s1")
	time.Sleep(2 * time.Millisecond)
	second := prepare(t, uc, "u1", "s2")
	prepare(t, uc, "u2", "s1")

	t.Run("oldest first, scoped to the user", func(t *testing.T) {
		pending, err := uc.ListPending(ctx, "u1", "")
		gt.NoError(t, err).Required()
		gt.Array(t, pending).Length(2)
		gt.Value(t, pending[0].ID).Equal(first.ID)
		gt.Value(t, pending[1].ID).Equal(second.ID)
	})

	t.Run("session filter narrows and keeps ownership", func(t *testing.T) {
		pending, err := uc.ListPending(ctx, "u1", "s1")
		gt.NoError(t, err).Required()
		gt.Array(t, pending).Length(1)
		gt.Value(t, pending[0].ID).Equal(first.ID)
	})

	t.Run("invalid user rejected", func(t *testing.T) {
		_, err := uc.ListPending(ctx, "", "")
		gt.Error(t, err).Is(usecase.ErrInvalidRequest)
	})
}

func TestGetOwnership(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	_, err := uc.Get(ctx, "u2", action.ID)
	gt.Error(t, err).Is(usecase.ErrUnauthorized)

	_, err = uc.Get(ctx, "u1", types.NewActionID())
	gt.Error(t, err).Is(usecase.ErrNotFoundOrExpired)
}

func TestNotifications(t *testing.T) {
	notifier := newCaptureNotifier()
	uc, _ := newLedger(t, usecase.WithNotifier(notifier))
	ctx := context.Background()

	action := prepare(t, uc, "u1", "")

	staged := waitNotify(t, notifier.pending)
	gt.Value(t, staged.ID).Equal(action.ID)
	gt.Value(t, staged.Status).Equal(types.ActionStatusPending)

	_, err := uc.Confirm(ctx, "u1", action.ID)
	gt.NoError(t, err).Required()

	resolved := waitNotify(t, notifier.resolved)
	gt.Value(t, resolved.ID).Equal(action.ID)
	gt.Value(t, resolved.Status).Equal(types.ActionStatusConfirmed)
}
