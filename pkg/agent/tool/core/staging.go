package core

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/stagehand-hq/stagehand/pkg/agent/tool"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
	"github.com/stagehand-hq/stagehand/pkg/usecase"
)

// actionToMap converts a PendingAction to a tool response map
func actionToMap(a *model.PendingAction) map[string]any {
	return map[string]any{
		"id":         a.ID.String(),
		"operation":  a.Operation,
		"risk":       a.Risk.String(),
		"status":     a.Status.String(),
		"preview":    a.Preview,
		"created_at": a.CreatedAt.String(),
		"expires_at": a.ExpiresAt.String(),
	}
}

// stageActionTool stages a mutating operation for human approval
type stageActionTool struct {
	uc      *usecase.UseCases
	user    types.UserID
	session types.SessionID
}

func (t *stageActionTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__stage_action",
		Description: "Stage a mutating operation for human approval. The operation is NOT executed; it waits until the user confirms it, and expires if they do not. Use this for any side-effecting operation.",
		Parameters: map[string]*gollem.Parameter{
			"operation": {
				Type:        gollem.TypeString,
				Description: "Identifier of the operation to stage",
				Required:    true,
			},
			"args": {
				Type:        gollem.TypeObject,
				Description: "Arguments passed to the operation when it is executed",
			},
			"risk": {
				Type:        gollem.TypeString,
				Description: "Risk level of the operation: LOW, MEDIUM or HIGH. Defaults to the operation catalog entry.",
			},
		},
	}
}

func (t *stageActionTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	operation, err := extractString(args, "operation")
	if err != nil {
		return nil, err
	}

	var opArgs map[string]any
	if raw, ok := args["args"]; ok {
		opArgs, ok = raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameter args must be an object, got %T", raw)
		}
	}

	var risk types.RiskLevel
	if raw, ok := args["risk"].(string); ok && raw != "" {
		risk, err = types.ParseRiskLevel(raw)
		if err != nil {
			return nil, err
		}
	}

	tool.Update(ctx, fmt.Sprintf("Staging %s for approval...", operation))
	action, err := t.uc.Prepare(ctx, usecase.PrepareInput{
		Operation: operation,
		Args:      opArgs,
		Risk:      risk,
		UserID:    t.user,
		SessionID: t.session,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to stage action",
			goerr.V("operation", operation))
	}

	return actionToMap(action), nil
}

// listPendingActionsTool lists the user's actions awaiting approval
type listPendingActionsTool struct {
	uc      *usecase.UseCases
	user    types.UserID
	session types.SessionID
}

func (t *listPendingActionsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__list_pending_actions",
		Description: "List the user's staged actions still awaiting approval, oldest first",
		Parameters: map[string]*gollem.Parameter{
			"all_sessions": {
				Type:        gollem.TypeBoolean,
				Description: "List pending actions across all sessions instead of only the current one",
			},
		},
	}
}

func (t *listPendingActionsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	session := t.session
	if all, ok := args["all_sessions"].(bool); ok && all {
		session = ""
	}

	tool.Update(ctx, "Listing pending actions...")
	actions, err := t.uc.ListPending(ctx, t.user, session)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pending actions")
	}

	items := make([]map[string]any, len(actions))
	for i, a := range actions {
		items[i] = actionToMap(a)
	}
	return map[string]any{"actions": items}, nil
}

// cancelActionTool withdraws a staged action before it is approved
type cancelActionTool struct {
	uc   *usecase.UseCases
	user types.UserID
}

func (t *cancelActionTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__cancel_action",
		Description: "Cancel a staged action that is no longer needed. Has no effect if the action was already confirmed, cancelled or expired.",
		Parameters: map[string]*gollem.Parameter{
			"action_id": {
				Type:        gollem.TypeString,
				Description: "ID of the staged action to cancel",
				Required:    true,
			},
		},
	}
}

func (t *cancelActionTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	rawID, err := extractString(args, "action_id")
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, fmt.Sprintf("Cancelling action %s...", rawID))
	cancelled, err := t.uc.Cancel(ctx, t.user, types.ActionID(rawID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to cancel action",
			goerr.V("action_id", rawID))
	}

	return map[string]any{"cancelled": cancelled}, nil
}
