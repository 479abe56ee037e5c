package safe

import (
	"context"
	"io"

	"github.com/stagehand-hq/stagehand/pkg/utils/logging"
)

// Close closes the closer and logs any error instead of returning it.
// For defer sites where a close failure is worth noting but not acting on.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "error", err)
	}
}
