package internalerr

import "errors"

// Sentinel errors for common cases
var (
	// ErrInvalidKeyword means the keyword failed validation (empty, too long,
	// or containing reserved characters). Rejected before any estimation.
	ErrInvalidKeyword = errors.New("invalid keyword")

	// ErrInsufficientData means a required signal is structurally absent,
	// e.g. zero competing videos found. Estimators still return defined
	// scores; the flag travels with the result.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrCollection means an upstream provider was unreachable or returned
	// a malformed payload. Callers may retry or proceed best-effort.
	ErrCollection = errors.New("collection failed")

	// ErrMalformedResponse means the text-completion output could not be
	// parsed into the expected structure. Isolated to decision synthesis.
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrInvalidSignal means a bundle carried structurally invalid data
	// (negative counts, duplicate ranks). Distinct from data that is
	// merely absent, which never raises.
	ErrInvalidSignal = errors.New("invalid signal data")

	ErrInvalidConfig = errors.New("invalid configuration")
)
