package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/stagehand-hq/stagehand/pkg/service/notify"
	"github.com/stagehand-hq/stagehand/pkg/usecase"
	"github.com/stagehand-hq/stagehand/pkg/utils/errutil"
	"github.com/stagehand-hq/stagehand/pkg/utils/logging"
)

// handleSlackInteraction handles button clicks from the approval message.
// Approve confirms the action, Reject cancels it. The handler always
// answers 200 once the payload parses: Slack retries non-200 responses,
// and a ledger-level rejection (already processed, expired) is a normal
// outcome, not a delivery failure.
func (s *Server) handleSlackInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Slack delivers interactions as form-encoded requests with a JSON
	// payload field
	payload := r.FormValue("payload")
	if payload == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("missing payload field in interaction request"), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse interaction payload"), http.StatusBadRequest)
		return
	}

	if callback.Type != slack.InteractionTypeBlockActions {
		w.WriteHeader(http.StatusOK)
		return
	}

	logger := logging.From(ctx)
	for _, blockAction := range callback.ActionCallback.BlockActions {
		switch blockAction.ActionID {
		case notify.SlackActionIDApprove, notify.SlackActionIDReject:
			owner, actionID, err := notify.ParseSlackActionValue(blockAction.Value)
			if err != nil {
				logger.Warn("failed to parse slack action value",
					"error", err, "value", blockAction.Value)
				continue
			}

			if blockAction.ActionID == notify.SlackActionIDApprove {
				if _, err := s.uc.Confirm(ctx, owner, actionID); err != nil {
					logSlackOutcome(r, "confirm", err, blockAction.Value, callback.User.ID)
				}
			} else {
				if _, err := s.uc.Cancel(ctx, owner, actionID); err != nil {
					logSlackOutcome(r, "cancel", err, blockAction.Value, callback.User.ID)
				}
			}

		default:
			// Not one of our buttons
			continue
		}
	}

	w.WriteHeader(http.StatusOK)
}

// logSlackOutcome records a failed interaction. Ledger rejections are
// expected races (someone else clicked first, or the window elapsed) and
// log at Info; everything else is an error.
func logSlackOutcome(r *http.Request, verb string, err error, value, slackUser string) {
	logger := logging.From(r.Context())
	if errors.Is(err, usecase.ErrAlreadyProcessed) || errors.Is(err, usecase.ErrNotFoundOrExpired) {
		logger.Info("slack "+verb+" superseded",
			"error", err, "value", value, "slack_user", slackUser)
		return
	}
	logger.Error("failed to handle slack "+verb,
		"error", err, "value", value, "slack_user", slackUser)
}
