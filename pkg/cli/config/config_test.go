package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/stagehand-hq/stagehand/pkg/cli/config"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "valid catalog with TTL policy",
			content: `
[confirm]
default_ttl = "5m"

[confirm.risk_ttl]
HIGH = "2m"
LOW = "15m"

[[operation]]
id = "close_ticket"
name = "Close Ticket"
description = "Mark a support ticket resolved"
risk = "LOW"
preview_template = "Close ticket {{.Args.ticket_id}}"
webhook_url = "https://hooks.example.com/close-ticket"

[[operation]]
id = "delete_account"
name = "Delete Account"
risk = "HIGH"
webhook_url = "https://hooks.example.com/delete-account"
`,
			wantErr: nil,
		},
		{
			name: "operation without risk defaults later",
			content: `
[[operation]]
id = "post_message"
name = "Post Message"
`,
			wantErr: nil,
		},
		{
			name:    "config file not found",
			content: "", // Won't create the file
			wantErr: config.ErrConfigNotFound,
		},
		{
			name: "missing operation ID",
			content: `
[[operation]]
name = "Anonymous"
`,
			wantErr: config.ErrMissingID,
		},
		{
			name: "duplicate operation ID",
			content: `
[[operation]]
id = "close_ticket"

[[operation]]
id = "close_ticket"
`,
			wantErr: config.ErrDuplicateOperationID,
		},
		{
			name: "invalid operation risk",
			content: `
[[operation]]
id = "close_ticket"
risk = "EXTREME"
`,
			wantErr: config.ErrInvalidRiskLevel,
		},
		{
			name: "invalid default TTL",
			content: `
[confirm]
default_ttl = "soon"
`,
			wantErr: config.ErrInvalidTTL,
		},
		{
			name: "negative default TTL",
			content: `
[confirm]
default_ttl = "-5m"
`,
			wantErr: config.ErrInvalidTTL,
		},
		{
			name: "invalid risk level in TTL policy",
			content: `
[confirm.risk_ttl]
EXTREME = "2m"
`,
			wantErr: config.ErrInvalidRiskLevel,
		},
		{
			name: "invalid risk TTL duration",
			content: `
[confirm.risk_ttl]
HIGH = "shortly"
`,
			wantErr: config.ErrInvalidTTL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.toml")

			if tt.content != "" {
				err := os.WriteFile(configPath, []byte(tt.content), 0644)
				gt.NoError(t, err).Required()
			}

			cfg, err := config.LoadAppConfiguration(configPath)

			if tt.wantErr != nil {
				gt.Value(t, err).NotNil()
				if err != nil {
					gt.Error(t, err).Is(tt.wantErr)
				}
				return
			}

			gt.NoError(t, err)
			gt.Value(t, cfg).NotNil()
		})
	}
}

func TestAppConfigCompilation(t *testing.T) {
	content := `
[confirm]
default_ttl = "10m"

[confirm.risk_ttl]
HIGH = "2m"

[[operation]]
id = "close_ticket"
name = "Close Ticket"
description = "Mark a support ticket resolved"
risk = "LOW"
preview_template = "Close ticket {{.Args.ticket_id}}"
webhook_url = "https://hooks.example.com/close-ticket"

[[operation]]
id = "post_message"
name = "Post Message"
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")
	err := os.WriteFile(configPath, []byte(content), 0644)
	gt.NoError(t, err).Required()

	cfg, err := config.LoadAppConfiguration(configPath)
	gt.NoError(t, err).Required()

	catalog := cfg.ToCatalog()
	ops := catalog.Operations()
	gt.Array(t, ops).Length(2).Required()

	closeTicket, ok := catalog.Get("close_ticket")
	gt.Bool(t, ok).True()
	gt.Value(t, closeTicket.Name).Equal("Close Ticket")
	gt.Value(t, closeTicket.Risk).Equal(types.RiskLevelLow)

	// Risk defaults to MEDIUM when the catalog entry leaves it blank
	postMessage, ok := catalog.Get("post_message")
	gt.Bool(t, ok).True()
	gt.Value(t, postMessage.Risk).Equal(types.RiskLevelMedium)

	confirmCfg, err := cfg.ToConfirmConfig()
	gt.NoError(t, err).Required()
	gt.Value(t, confirmCfg.DefaultTTL).Equal(10 * time.Minute)
	gt.Value(t, confirmCfg.TTLFor(types.RiskLevelHigh)).Equal(2 * time.Minute)
	gt.Value(t, confirmCfg.TTLFor(types.RiskLevelLow)).Equal(10 * time.Minute)

	templates := cfg.PreviewTemplates()
	gt.Value(t, len(templates)).Equal(1)
	gt.Value(t, templates["close_ticket"]).Equal("Close ticket {{.Args.ticket_id}}")

	endpoints := cfg.WebhookEndpoints()
	gt.Value(t, len(endpoints)).Equal(1)
	gt.Value(t, endpoints["close_ticket"]).Equal("https://hooks.example.com/close-ticket")
}
