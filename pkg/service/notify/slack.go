package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

// Slack interaction identifiers for the approval buttons
const (
	SlackActionIDApprove = "sh_approve"
	SlackActionIDReject  = "sh_reject"
	slackActionBlockID   = "sh_confirm_buttons"
)

// SlackNotifier posts approval request messages to a Slack channel. Each
// pending action gets a Block Kit message with Approve and Reject buttons;
// the interaction webhook drives the confirmation flow from there.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

var _ interfaces.Notifier = &SlackNotifier{}

// NewSlack creates a notifier posting to the given channel
func NewSlack(token, channelID string) (*SlackNotifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	return &SlackNotifier{
		api:     slack.New(token),
		channel: channelID,
	}, nil
}

// NotifyPending posts the approval request for a newly staged action
func (x *SlackNotifier) NotifyPending(ctx context.Context, action *model.PendingAction) error {
	blocks := buildPendingBlocks(action)
	fallback := fmt.Sprintf("Approval required: %s", action.Operation)

	_, _, err := x.api.PostMessageContext(ctx, x.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post approval request",
			goerr.V("channel", x.channel), goerr.V("action_id", action.ID))
	}
	return nil
}

// NotifyResolved posts the outcome once an action reaches a terminal status
func (x *SlackNotifier) NotifyResolved(ctx context.Context, action *model.PendingAction) error {
	blocks := buildResolvedBlocks(action)
	fallback := fmt.Sprintf("Action %s: %s", strings.ToLower(action.Status.String()), action.Operation)

	_, _, err := x.api.PostMessageContext(ctx, x.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post action outcome",
			goerr.V("channel", x.channel), goerr.V("action_id", action.ID))
	}
	return nil
}

// buildPendingBlocks constructs the Block Kit approval request message
func buildPendingBlocks(action *model.PendingAction) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "Approval required: "+action.Operation, true, false),
		),
	}

	if action.Preview != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, action.Preview, false, false),
			nil, nil,
		))
	}

	contextParts := []string{
		fmt.Sprintf("Requested by: %s", action.OwnerID),
		fmt.Sprintf("Risk: %s %s", action.Risk.Emoji(), action.Risk),
		fmt.Sprintf("Expires: <!date^%d^{time}|%s>", action.ExpiresAt.Unix(), action.ExpiresAt.Format("15:04:05 MST")),
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, strings.Join(contextParts, "  |  "), false, false),
	))

	buttonValue := FormatSlackActionValue(action.OwnerID, action.ID)

	approve := slack.NewButtonBlockElement(SlackActionIDApprove, buttonValue,
		slack.NewTextBlockObject(slack.PlainTextType, "Approve", true, false),
	)
	approve.Style = slack.StylePrimary
	reject := slack.NewButtonBlockElement(SlackActionIDReject, buttonValue,
		slack.NewTextBlockObject(slack.PlainTextType, "Reject", true, false),
	)
	reject.Style = slack.StyleDanger

	blocks = append(blocks, slack.NewActionBlock(slackActionBlockID, approve, reject))

	return blocks
}

// buildResolvedBlocks constructs the terminal outcome message
func buildResolvedBlocks(action *model.PendingAction) []slack.Block {
	var headline string
	switch action.Status {
	case types.ActionStatusConfirmed:
		headline = "✅ Confirmed: " + action.Operation
	case types.ActionStatusCancelled:
		headline = "🚫 Cancelled: " + action.Operation
	case types.ActionStatusFailed:
		headline = "❌ Failed: " + action.Operation
	default:
		headline = fmt.Sprintf("%s: %s", action.Status, action.Operation)
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, headline, true, false),
		),
	}

	detail := action.Result
	if action.Status == types.ActionStatusFailed {
		detail = action.Error
	}
	if detail != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, detail, false, false),
			nil, nil,
		))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Requested by: %s  |  ID: %s", action.OwnerID, action.ID), false, false),
	))

	return blocks
}

// FormatSlackActionValue encodes the button payload as "ownerID:actionID"
func FormatSlackActionValue(owner types.UserID, id types.ActionID) string {
	return fmt.Sprintf("%s:%s", owner, id)
}

// ParseSlackActionValue splits a button payload back into its components.
// The owner may contain colons; the action ID never does, so the split is
// on the last colon.
func ParseSlackActionValue(value string) (types.UserID, types.ActionID, error) {
	lastColon := strings.LastIndex(value, ":")
	if lastColon <= 0 || lastColon == len(value)-1 {
		return "", "", goerr.New("invalid slack action value", goerr.V("value", value))
	}
	return types.UserID(value[:lastColon]), types.ActionID(value[lastColon+1:]), nil
}
