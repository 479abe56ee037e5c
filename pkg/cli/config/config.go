package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/stagehand-hq/stagehand/pkg/domain/model/config"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

// AppConfig represents the application configuration loaded from TOML
type AppConfig struct {
	Operations []Operation `toml:"operation"`
	Confirm    Confirm     `toml:"confirm"`
}

// Operation declares one stageable operation in the catalog
type Operation struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Risk        string `toml:"risk"`

	// PreviewTemplate renders the approval preview when no LLM is
	// configured. Go text/template syntax with .Operation and .Args.
	PreviewTemplate string `toml:"preview_template"`

	// WebhookURL binds the operation to a webhook executor. Operations
	// without one must be bound to a built-in executor at startup.
	WebhookURL string `toml:"webhook_url"`
}

// Validate checks if the Operation is valid
func (o *Operation) Validate() error {
	if o.ID == "" {
		return goerr.Wrap(ErrMissingID, "operation ID is required")
	}
	if o.Risk != "" {
		if _, err := types.ParseRiskLevel(o.Risk); err != nil {
			return goerr.Wrap(ErrInvalidRiskLevel, "invalid operation risk",
				goerr.V(OperationIDKey, o.ID), goerr.V("risk", o.Risk))
		}
	}
	return nil
}

// Confirm holds the confirmation TTL policy
type Confirm struct {
	// DefaultTTL is the approval window as a Go duration string, e.g. "5m"
	DefaultTTL string `toml:"default_ttl"`

	// RiskTTL overrides the window per risk level, e.g. HIGH = "2m"
	RiskTTL map[string]string `toml:"risk_ttl"`
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	ids := make(map[string]bool)
	for _, op := range a.Operations {
		if err := op.Validate(); err != nil {
			return goerr.Wrap(err, "invalid operation")
		}
		if ids[op.ID] {
			return goerr.Wrap(ErrDuplicateOperationID, "duplicate operation ID",
				goerr.V(OperationIDKey, op.ID))
		}
		ids[op.ID] = true
	}

	if _, err := a.ToConfirmConfig(); err != nil {
		return err
	}

	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "configuration file not found",
				goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToCatalog compiles the operation catalog
func (a *AppConfig) ToCatalog() *domainConfig.Catalog {
	operations := make([]domainConfig.Operation, len(a.Operations))
	for i, op := range a.Operations {
		risk := types.RiskLevel(op.Risk)
		if risk == "" {
			risk = types.RiskLevelMedium
		}
		operations[i] = domainConfig.Operation{
			ID:          op.ID,
			Name:        op.Name,
			Description: op.Description,
			Risk:        risk,
		}
	}
	return domainConfig.NewCatalog(operations)
}

// ToConfirmConfig compiles the TTL policy
func (a *AppConfig) ToConfirmConfig() (*domainConfig.ConfirmConfig, error) {
	cfg := domainConfig.NewConfirmConfig()

	if a.Confirm.DefaultTTL != "" {
		ttl, err := time.ParseDuration(a.Confirm.DefaultTTL)
		if err != nil || ttl <= 0 {
			return nil, goerr.Wrap(ErrInvalidTTL, "invalid default TTL",
				goerr.V("default_ttl", a.Confirm.DefaultTTL))
		}
		cfg.DefaultTTL = ttl
	}

	if len(a.Confirm.RiskTTL) > 0 {
		cfg.RiskTTL = make(map[types.RiskLevel]time.Duration, len(a.Confirm.RiskTTL))
		for rawRisk, rawTTL := range a.Confirm.RiskTTL {
			risk, err := types.ParseRiskLevel(rawRisk)
			if err != nil {
				return nil, goerr.Wrap(ErrInvalidRiskLevel, "invalid risk level in TTL policy",
					goerr.V("risk", rawRisk))
			}
			ttl, err := time.ParseDuration(rawTTL)
			if err != nil || ttl <= 0 {
				return nil, goerr.Wrap(ErrInvalidTTL, "invalid risk TTL",
					goerr.V("risk", rawRisk), goerr.V("ttl", rawTTL))
			}
			cfg.RiskTTL[risk] = ttl
		}
	}

	return cfg, nil
}

// PreviewTemplates returns the per-operation preview templates
func (a *AppConfig) PreviewTemplates() map[string]string {
	templates := make(map[string]string)
	for _, op := range a.Operations {
		if op.PreviewTemplate != "" {
			templates[op.ID] = op.PreviewTemplate
		}
	}
	return templates
}

// WebhookEndpoints returns the per-operation webhook executor endpoints
func (a *AppConfig) WebhookEndpoints() map[string]string {
	endpoints := make(map[string]string)
	for _, op := range a.Operations {
		if op.WebhookURL != "" {
			endpoints[op.ID] = op.WebhookURL
		}
	}
	return endpoints
}
