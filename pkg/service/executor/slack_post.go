package executor

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
)

// SlackPost executes the built-in post_message operation: it posts the
// staged text to the staged channel once the action is confirmed.
type SlackPost struct {
	api *slack.Client
}

var _ interfaces.ToolExecutor = &SlackPost{}

func NewSlackPost(token string) (*SlackPost, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	return &SlackPost{api: slack.New(token)}, nil
}

func (x *SlackPost) Execute(ctx context.Context, operation string, args map[string]any) (*model.ExecutionResult, error) {
	channel, ok := args["channel"].(string)
	if !ok || channel == "" {
		return nil, goerr.New("channel argument is required", goerr.V("operation", operation))
	}
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return nil, goerr.New("text argument is required", goerr.V("operation", operation))
	}

	_, ts, err := x.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to post message", goerr.V("channel", channel))
	}

	return &model.ExecutionResult{
		Summary: fmt.Sprintf("posted message to %s", channel),
		Data:    map[string]any{"channel": channel, "ts": ts},
	}, nil
}
