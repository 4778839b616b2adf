package ports

import "errors"

// Standard application-level errors.
// Core components wrap these with context via fmt.Errorf("...: %w", ...);
// callers branch with errors.Is rather than matching messages.
var (
	// Calculation / validation errors (the core taxonomy)
	ErrDataInsufficient = errors.New("not enough data points for calculation")
	ErrDataStale        = errors.New("most recent data point is older than the staleness threshold")
	ErrDataInvalid      = errors.New("malformed input data")
	ErrValueOutOfRange  = errors.New("computed value outside the allowed range")
	ErrLimitExceeded    = errors.New("risk limit would be exceeded")

	// General errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Exchange specific errors
	ErrExchangeUnavailable = errors.New("exchange API is unavailable")
	ErrConnectionFailed    = errors.New("failed to connect to the exchange")
	ErrRateLimited         = errors.New("API rate limit exceeded")

	// Storage specific errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrStateCorrupt = errors.New("persisted state unreadable, assuming worst case")
)
