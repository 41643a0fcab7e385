// Package common defines shared constants and sentinel errors used across
// ArtVault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Lifecycle errors. Both are recoverable by re-reading the submission status.
	ErrWrongState        = errors.New("operation not valid in current state")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidOverride   = errors.New("override target inconsistent with submission data")

	// Ingestion errors. The caller has to restart the upload for the submission.
	ErrSizeExceeded         = errors.New("asset size exceeds limit")
	ErrSizeMismatch         = errors.New("assembled size does not match declared size")
	ErrHashMismatch         = errors.New("assembled hash does not match declared hash")
	ErrIncompleteAsset      = errors.New("chunk set is not contiguous")
	ErrChunkIndexOutOfRange = errors.New("chunk index out of range")
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// Verdict validation.
	ErrInvalidVerdict = errors.New("invalid verdict")

	// Transient collaborator errors, safe to retry.
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrLedgerUnavailable  = errors.New("ledger service unavailable")
	ErrOracleUnavailable  = errors.New("recognition service unavailable")
	ErrIssuerUnavailable  = errors.New("reward issuer unavailable")
	ErrStorageUnavailable = errors.New("asset storage unavailable")
)

var retryable = []error{
	ErrPaymentNotFound,
	ErrLedgerUnavailable,
	ErrOracleUnavailable,
	ErrIssuerUnavailable,
	ErrStorageUnavailable,
}

// IsRetryable reports whether repeating the same call later may succeed
// without the caller changing anything.
func IsRetryable(err error) bool {
	for _, target := range retryable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
