package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
)

// LLMRenderer generates the human-readable preview of a staged operation
// with an LLM. The preview is shown to the approver, so the prompt asks for
// a short factual description of what will happen, not a recommendation.
type LLMRenderer struct {
	llm gollem.LLMClient
}

var _ interfaces.PreviewRenderer = &LLMRenderer{}

func NewLLM(llm gollem.LLMClient) *LLMRenderer {
	return &LLMRenderer{llm: llm}
}

func (x *LLMRenderer) Render(ctx context.Context, operation string, args map[string]any) (string, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal operation arguments",
			goerr.V("operation", operation))
	}

	session, err := x.llm.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create preview session")
	}

	prompt := fmt.Sprintf(`Describe the following operation in one or two plain sentences so a human can decide whether to approve it.
State only what will happen. Do not recommend approving or rejecting. Do not use markdown.

Operation: %s
Arguments: %s`, operation, rawArgs)

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate preview",
			goerr.V("operation", operation))
	}

	if len(resp.Texts) == 0 {
		return "", goerr.New("preview generation returned empty result",
			goerr.V("operation", operation))
	}

	return strings.TrimSpace(resp.Texts[0]), nil
}
