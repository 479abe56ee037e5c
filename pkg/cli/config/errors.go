package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound       = goerr.New("configuration file not found")
	ErrInvalidConfig        = goerr.New("invalid configuration")
	ErrDuplicateOperationID = goerr.New("duplicate operation ID")
	ErrInvalidRiskLevel     = goerr.New("invalid risk level")
	ErrInvalidTTL           = goerr.New("invalid TTL duration")
	ErrMissingID            = goerr.New("operation ID is required")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	OperationIDKey = "operation_id"
)
