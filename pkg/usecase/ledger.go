package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
	"github.com/stagehand-hq/stagehand/pkg/utils/async"
	"github.com/stagehand-hq/stagehand/pkg/utils/errutil"
	"github.com/stagehand-hq/stagehand/pkg/utils/logging"
)

// PrepareInput carries the parameters for staging an action.
type PrepareInput struct {
	Operation string
	Args      map[string]any
	Risk      types.RiskLevel
	UserID    types.UserID
	SessionID types.SessionID
}

func (x *PrepareInput) Validate() error {
	if x.Operation == "" {
		return goerr.Wrap(ErrInvalidRequest, "operation is required")
	}
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidRequest, "invalid user ID", goerr.V("cause", err.Error()))
	}
	if x.Risk != "" && !x.Risk.IsValid() {
		return goerr.Wrap(ErrInvalidRequest, "invalid risk level", goerr.V("risk", x.Risk))
	}
	return nil
}

// Prepare stages an operation for confirmation. The action starts PENDING
// with a TTL derived from its risk level; the returned record carries the
// preview shown to the approver. Preview rendering and approval
// notification are best-effort and never fail the staging.
func (u *UseCases) Prepare(ctx context.Context, input PrepareInput) (*model.PendingAction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	risk := input.Risk
	if u.catalog != nil {
		op, ok := u.catalog.Get(input.Operation)
		if !ok {
			return nil, goerr.Wrap(ErrInvalidRequest, "unknown operation",
				goerr.V("operation", input.Operation))
		}
		if risk == "" {
			risk = op.Risk
		}
	}
	if risk == "" {
		risk = types.RiskLevelMedium
	}

	ttl := u.confirm.TTLFor(risk)
	action := model.NewPendingAction(input.Operation, input.Args, risk, input.UserID, input.SessionID, ttl)
	action.Preview = u.renderPreview(ctx, input.Operation, input.Args)

	if err := u.store.Put(ctx, action, ttl, action.Indexes()); err != nil {
		return nil, u.classifyStoreErr(err)
	}

	if u.notifier != nil {
		staged := action.Clone()
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := u.notifier.NotifyPending(ctx, staged); err != nil {
				errutil.Handle(ctx, err, "failed to post approval notification")
			}
			return nil
		})
	}

	return action, nil
}

// Confirm executes a staged action exactly once. The caller must be the
// user who staged it. The action is first claimed PENDING to EXECUTING
// through an atomic conditional transition; only the claim winner reaches
// the executor, every rival caller gets a classified rejection. The
// outcome is then settled as CONFIRMED or FAILED. A failed execution is
// never retried.
func (u *UseCases) Confirm(ctx context.Context, user types.UserID, id types.ActionID) (*model.PendingAction, error) {
	if err := user.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid user ID")
	}
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid action ID")
	}

	claimed, err := u.store.CompareAndTransition(ctx, id, interfaces.TransitionCondition{
		FromStatus: types.ActionStatusPending,
		Owner:      user,
		Now:        time.Now(),
	}, func(a *model.PendingAction) {
		a.Status = types.ActionStatusExecuting
	})
	if err != nil {
		return nil, u.classifyStoreErr(err)
	}

	result, execErr := u.execute(ctx, claimed)

	settled, err := u.store.CompareAndTransition(ctx, id, interfaces.TransitionCondition{
		FromStatus: types.ActionStatusExecuting,
	}, func(a *model.PendingAction) {
		if execErr != nil {
			a.Status = types.ActionStatusFailed
			a.Error = execErr.Error()
			return
		}
		a.Status = types.ActionStatusConfirmed
		if result != nil {
			a.Result = result.Summary
		}
	})
	if err != nil {
		// The claim already happened, so exactly-once still holds; only the
		// outcome record is lost.
		return nil, goerr.Wrap(u.classifyStoreErr(err), "failed to settle executed action",
			goerr.V("id", id), goerr.V("executed", execErr == nil))
	}

	u.retireIndexes(ctx, settled)
	u.notifyResolved(ctx, settled)

	if execErr != nil {
		return settled, goerr.Wrap(ErrExecutorFailure, execErr.Error(),
			goerr.V("id", id), goerr.V("operation", settled.Operation))
	}
	return settled, nil
}

// Cancel withdraws a staged action without executing it. Cancelling an
// action that already left PENDING reports false with no error, so repeated
// cancels are idempotent. Only the staging user may cancel.
func (u *UseCases) Cancel(ctx context.Context, user types.UserID, id types.ActionID) (bool, error) {
	if err := user.Validate(); err != nil {
		return false, goerr.Wrap(ErrInvalidRequest, "invalid user ID")
	}
	if err := id.Validate(); err != nil {
		return false, goerr.Wrap(ErrInvalidRequest, "invalid action ID")
	}

	cancelled, err := u.store.CompareAndTransition(ctx, id, interfaces.TransitionCondition{
		FromStatus: types.ActionStatusPending,
		Owner:      user,
		Now:        time.Now(),
	}, func(a *model.PendingAction) {
		a.Status = types.ActionStatusCancelled
	})
	if err != nil {
		if errors.Is(err, types.ErrStatusConflict) {
			return false, nil
		}
		return false, u.classifyStoreErr(err)
	}

	u.retireIndexes(ctx, cancelled)
	u.notifyResolved(ctx, cancelled)

	return true, nil
}

// ListPending returns the user's actions still awaiting confirmation,
// oldest first. A non-empty session narrows the result to that session.
func (u *UseCases) ListPending(ctx context.Context, user types.UserID, session types.SessionID) ([]*model.PendingAction, error) {
	if err := user.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid user ID")
	}

	index := model.UserIndex(user)
	if session != "" {
		index = model.SessionIndex(session)
	}

	actions, err := u.store.GetByIndex(ctx, index)
	if err != nil {
		return nil, u.classifyStoreErr(err)
	}

	now := time.Now()
	result := make([]*model.PendingAction, 0, len(actions))
	for _, action := range actions {
		if action.OwnerID != user {
			continue
		}
		if action.EffectiveStatus(now) != types.ActionStatusPending {
			continue
		}
		result = append(result, action)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Get returns one action regardless of status. The reported status is the
// effective one: a PENDING record past its expiry reads as EXPIRED.
func (u *UseCases) Get(ctx context.Context, user types.UserID, id types.ActionID) (*model.PendingAction, error) {
	if err := user.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid user ID")
	}
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid action ID")
	}

	action, err := u.store.Get(ctx, id)
	if err != nil {
		return nil, u.classifyStoreErr(err)
	}

	if action.OwnerID != user {
		return nil, goerr.Wrap(ErrUnauthorized, "action belongs to another user", goerr.V("id", id))
	}

	action.Status = action.EffectiveStatus(time.Now())
	return action, nil
}

func (u *UseCases) execute(ctx context.Context, action *model.PendingAction) (*model.ExecutionResult, error) {
	exec, ok := u.registry.Get(action.Operation)
	if !ok {
		return nil, goerr.New("no executor registered for operation",
			goerr.V("operation", action.Operation))
	}
	return exec.Execute(ctx, action.Operation, action.Args)
}

func (u *UseCases) renderPreview(ctx context.Context, operation string, args map[string]any) string {
	if u.preview != nil {
		preview, err := u.preview.Render(ctx, operation, args)
		if err == nil && preview != "" {
			return preview
		}
		if err != nil {
			logging.From(ctx).Warn("preview rendering failed, falling back",
				"operation", operation, "error", err)
		}
	}
	return fallbackPreview(operation, args)
}

// fallbackPreview builds a deterministic plain-text preview when no
// renderer is configured or rendering fails
func fallbackPreview(operation string, args map[string]any) string {
	if len(args) == 0 {
		return fmt.Sprintf("Execute %s", operation)
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return fmt.Sprintf("Execute %s (%s)", operation, strings.Join(parts, ", "))
}

// retireIndexes removes a terminal action from its secondary indexes,
// best-effort. A leftover member is healed by the next index read.
func (u *UseCases) retireIndexes(ctx context.Context, action *model.PendingAction) {
	for _, index := range action.Indexes() {
		if err := u.store.RemoveFromIndex(ctx, index, action.ID); err != nil {
			logging.From(ctx).Warn("failed to retire index membership",
				"id", action.ID, "index", index.String(), "error", err)
		}
	}
}

func (u *UseCases) notifyResolved(ctx context.Context, action *model.PendingAction) {
	if u.notifier == nil {
		return
	}
	resolved := action.Clone()
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := u.notifier.NotifyResolved(ctx, resolved); err != nil {
			errutil.Handle(ctx, err, "failed to post resolution notification")
		}
		return nil
	})
}

// classifyStoreErr maps store sentinels onto the public error taxonomy
func (u *UseCases) classifyStoreErr(err error) error {
	switch {
	case errors.Is(err, types.ErrRecordNotFound), errors.Is(err, types.ErrRecordExpired):
		return goerr.Wrap(ErrNotFoundOrExpired, err.Error())
	case errors.Is(err, types.ErrOwnerMismatch):
		return goerr.Wrap(ErrUnauthorized, err.Error())
	case errors.Is(err, types.ErrStatusConflict):
		return goerr.Wrap(ErrAlreadyProcessed, err.Error())
	default:
		return goerr.Wrap(ErrStoreUnavailable, err.Error())
	}
}
