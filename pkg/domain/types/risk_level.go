package types

import "fmt"

// RiskLevel classifies how dangerous a staged operation is. It is
// informational metadata on the record; the confirmation flow is identical
// for all levels, though TTL policy may be tiered by level.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// AllRiskLevels returns all valid risk levels
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh}
}

// IsValid checks if the risk level is valid
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}

// Emoji returns the emoji shown next to the risk level in notifications
func (r RiskLevel) Emoji() string {
	switch r {
	case RiskLevelLow:
		return "🟢"
	case RiskLevelMedium:
		return "🟡"
	case RiskLevelHigh:
		return "🔴"
	default:
		return "⚪"
	}
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	level := RiskLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return level, nil
}
