package interfaces

import (
	"context"

	"github.com/stagehand-hq/stagehand/pkg/domain/model"
)

// ToolExecutor performs the actual mutating operation once a staged action
// is confirmed. The engine guarantees it is invoked at most once per action
// ID; it does not guarantee the external side effect itself is idempotent.
type ToolExecutor interface {
	Execute(ctx context.Context, operation string, args map[string]any) (*model.ExecutionResult, error)
}

// PreviewRenderer turns an operation and its arguments into human-readable
// text shown to the approver. Rendering is best-effort: a failure yields an
// empty preview, never a staging failure.
type PreviewRenderer interface {
	Render(ctx context.Context, operation string, args map[string]any) (string, error)
}
