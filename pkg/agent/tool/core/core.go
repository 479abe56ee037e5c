// Package core provides the agent-facing tools of the confirmation flow.
// The tool set deliberately has no confirm tool: staging and cancelling are
// agent operations, but approval only ever comes from a human surface (the
// REST API or the Slack buttons).
package core

import (
	"fmt"

	"github.com/m-mizutani/gollem"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
	"github.com/stagehand-hq/stagehand/pkg/usecase"
)

// New builds the staging tools for an agent session acting on behalf of
// the given user.
func New(uc *usecase.UseCases, user types.UserID, session types.SessionID) []gollem.Tool {
	return []gollem.Tool{
		&stageActionTool{uc: uc, user: user, session: session},
		&listPendingActionsTool{uc: uc, user: user, session: session},
		&cancelActionTool{uc: uc, user: user},
	}
}

// extractString extracts a required string value from args
func extractString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string, got %T", key, v)
	}
	return s, nil
}
