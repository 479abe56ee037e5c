package config

import (
	"time"

	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

// DefaultConfirmTTL is the approval window applied when no TTL policy is
// configured. All risk levels share it unless a per-level override is set.
const DefaultConfirmTTL = 5 * time.Minute

// ConfirmConfig holds the TTL policy for staged actions. The original
// product used a single fixed 5-minute window for every risk tier; the TTL
// is configurable here, optionally per risk level.
type ConfirmConfig struct {
	DefaultTTL time.Duration
	RiskTTL    map[types.RiskLevel]time.Duration
}

// NewConfirmConfig returns the policy with the fixed default window
func NewConfirmConfig() *ConfirmConfig {
	return &ConfirmConfig{DefaultTTL: DefaultConfirmTTL}
}

// TTLFor returns the approval window for the given risk level
func (c *ConfirmConfig) TTLFor(risk types.RiskLevel) time.Duration {
	if c == nil {
		return DefaultConfirmTTL
	}
	if ttl, ok := c.RiskTTL[risk]; ok && ttl > 0 {
		return ttl
	}
	if c.DefaultTTL > 0 {
		return c.DefaultTTL
	}
	return DefaultConfirmTTL
}
