package usecase

import "errors"

// Error taxonomy returned by the ledger. Callers branch on these with
// errors.Is; transport layers map them onto status codes.
var (
	// ErrNotFoundOrExpired covers both an unknown action ID and one whose
	// confirmation window has elapsed. The two cases are deliberately
	// indistinguishable: TTL eviction makes an expired action unknowable.
	ErrNotFoundOrExpired = errors.New("action not found or expired")

	// ErrAlreadyProcessed means the action left PENDING before this call
	ErrAlreadyProcessed = errors.New("action already processed")

	// ErrUnauthorized means the caller is not the user who staged the action
	ErrUnauthorized = errors.New("action belongs to another user")

	// ErrStoreUnavailable wraps backend failures unrelated to the action state
	ErrStoreUnavailable = errors.New("action store unavailable")

	// ErrExecutorFailure means the claim succeeded but execution failed.
	// The action is settled as FAILED and will not be retried.
	ErrExecutorFailure = errors.New("action execution failed")

	// ErrInvalidRequest covers malformed input rejected before any store access
	ErrInvalidRequest = errors.New("invalid request")
)
