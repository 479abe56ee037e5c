package preview_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/stagehand-hq/stagehand/pkg/service/preview"
)

func TestTemplateRenderer(t *testing.T) {
	renderer, err := preview.NewTemplate(map[string]string{
		"close_ticket": "Close ticket {{ .Args.ticket_id }} and notify the reporter",
		"post_message": "Post to {{ .Args.channel }}: {{ .Args.text }}",
	})
	gt.NoError(t, err).Required()
	ctx := context.Background()

	t.Run("renders with arguments", func(t *testing.T) {
		got, err := renderer.Render(ctx, "close_ticket", map[string]any{"ticket_id": "T-42"})
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("Close ticket T-42 and notify the reporter")
	})

	t.Run("unknown operation is an error", func(t *testing.T) {
		_, err := renderer.Render(ctx, "delete_everything", nil)
		gt.Error(t, err)
	})

	t.Run("missing argument renders zero value", func(t *testing.T) {
		got, err := renderer.Render(ctx, "post_message", map[string]any{"channel": "#ops"})
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("Post to #ops: <no value>")
	})
}

func TestNewTemplateInvalid(t *testing.T) {
	_, err := preview.NewTemplate(map[string]string{
		"broken": "{{ .Args.ticket_id",
	})
	gt.Error(t, err)
}
