package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/utils/safe"
)

const defaultWebhookTimeout = 30 * time.Second

// Webhook delivers a confirmed operation to a fixed HTTP endpoint as a JSON
// POST. The endpoint is set at registration time, never taken from the
// staged arguments, so a staged action cannot redirect the call.
type Webhook struct {
	endpoint string
	client   *http.Client
}

var _ interfaces.ToolExecutor = &Webhook{}

type WebhookOption func(*Webhook)

// WithHTTPClient replaces the HTTP client, e.g. for tests
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(x *Webhook) {
		x.client = client
	}
}

func NewWebhook(endpoint string, opts ...WebhookOption) (*Webhook, error) {
	if endpoint == "" {
		return nil, goerr.New("webhook endpoint is required")
	}

	x := &Webhook{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// webhookPayload is the JSON body delivered to the endpoint
type webhookPayload struct {
	Operation string         `json:"operation"`
	Args      map[string]any `json:"args"`
}

func (x *Webhook) Execute(ctx context.Context, operation string, args map[string]any) (*model.ExecutionResult, error) {
	body, err := json.Marshal(webhookPayload{Operation: operation, Args: args})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal webhook payload",
			goerr.V("operation", operation))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build webhook request",
			goerr.V("endpoint", x.endpoint))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to deliver webhook",
			goerr.V("endpoint", x.endpoint), goerr.V("operation", operation))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.New("webhook endpoint rejected the request",
			goerr.V("endpoint", x.endpoint),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(raw)))
	}

	result := &model.ExecutionResult{
		Summary: fmt.Sprintf("delivered %s to %s", operation, x.endpoint),
	}

	// A JSON object response is passed through to the caller
	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err == nil {
		result.Data = data
	}

	return result, nil
}
