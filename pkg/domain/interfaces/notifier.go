package interfaces

import (
	"context"

	"github.com/stagehand-hq/stagehand/pkg/domain/model"
)

// Notifier delivers human-facing notifications about staged actions.
// Implementations must be safe for concurrent use; callers treat delivery
// as best-effort.
type Notifier interface {
	// NotifyPending announces a newly staged action awaiting confirmation
	NotifyPending(ctx context.Context, action *model.PendingAction) error

	// NotifyResolved announces that an action reached a terminal status
	NotifyResolved(ctx context.Context, action *model.PendingAction) error
}
