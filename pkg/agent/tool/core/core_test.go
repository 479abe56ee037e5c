package core_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/stagehand-hq/stagehand/pkg/agent/tool/core"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/repository/memory"
	"github.com/stagehand-hq/stagehand/pkg/service/executor"
	"github.com/stagehand-hq/stagehand/pkg/usecase"
)

func findTool(t *testing.T, tools []gollem.Tool, name string) gollem.Tool {
	t.Helper()
	for _, tl := range tools {
		if tl.Spec().Name == name {
			return tl
		}
	}
	t.Fatalf("tool not found: %s", name)
	return nil
}

func newToolSet(t *testing.T) ([]gollem.Tool, *usecase.UseCases) {
	t.Helper()
	registry := executor.NewRegistry()
	gt.NoError(t, registry.Register("close_ticket", executor.Func(
		func(ctx context.Context, operation string, args map[string]any) (*model.ExecutionResult, error) {
			return &model.ExecutionResult{Summary: "closed"}, nil
		}))).Required()

	uc := usecase.New(memory.New(), usecase.WithRegistry(registry))
	return core.New(uc, "u1", "s1"), uc
}

func TestStageActionTool(t *testing.T) {
	tools, uc := newToolSet(t)
	stage := findTool(t, tools, "core__stage_action")
	ctx := context.Background()

	resp, err := stage.Run(ctx, map[string]any{
		"operation": "close_ticket",
		"args":      map[string]any{"ticket_id": "T-1"},
		"risk":      "HIGH",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, resp["status"]).Equal("PENDING")
	gt.Value(t, resp["risk"]).Equal("HIGH")

	// The staged action is visible through the ledger
	pending, err := uc.ListPending(ctx, "u1", "")
	gt.NoError(t, err).Required()
	gt.Array(t, pending).Length(1)
	gt.Value(t, pending[0].ID.String()).Equal(gt.Cast[string](t, resp["id"]))

	t.Run("missing operation rejected", func(t *testing.T) {
		_, err := stage.Run(ctx, map[string]any{})
		gt.Error(t, err)
	})

	t.Run("invalid risk rejected", func(t *testing.T) {
		_, err := stage.Run(ctx, map[string]any{
			"operation": "close_ticket",
			"risk":      "EXTREME",
		})
		gt.Error(t, err)
	})
}

func TestListPendingActionsTool(t *testing.T) {
	tools, _ := newToolSet(t)
	stage := findTool(t, tools, "core__stage_action")
	list := findTool(t, tools, "core__list_pending_actions")
	ctx := context.Background()

	_, err := stage.Run(ctx, map[string]any{"operation": "close_ticket"})
	gt.NoError(t, err).Required()

	resp, err := list.Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()

	items := gt.Cast[[]map[string]any](t, resp["actions"])
	gt.Array(t, items).Length(1)
	gt.Value(t, items[0]["operation"]).Equal("close_ticket")
}

func TestCancelActionTool(t *testing.T) {
	tools, _ := newToolSet(t)
	stage := findTool(t, tools, "core__stage_action")
	cancel := findTool(t, tools, "core__cancel_action")
	ctx := context.Background()

	staged, err := stage.Run(ctx, map[string]any{"operation": "close_ticket"})
	gt.NoError(t, err).Required()
	id := gt.Cast[string](t, staged["id"])

	resp, err := cancel.Run(ctx, map[string]any{"action_id": id})
	gt.NoError(t, err).Required()
	gt.Value(t, resp["cancelled"]).Equal(true)

	// Second cancel reports false, not an error
	resp, err = cancel.Run(ctx, map[string]any{"action_id": id})
	gt.NoError(t, err).Required()
	gt.Value(t, resp["cancelled"]).Equal(false)
}

func TestToolSpecs(t *testing.T) {
	tools, _ := newToolSet(t)
	gt.Array(t, tools).Length(3)

	for _, tl := range tools {
		spec := tl.Spec()
		gt.Value(t, spec.Name).NotEqual("")
		gt.Value(t, spec.Description).NotEqual("")
	}
}
