// Package handlers – error code taxonomy.
//
// Symbolic error codes carried in the `code` field of ErrorResponse. Codes
// are lowercase snake_case and stable; clients branch on them
// programmatically while `message` stays free to change.
//
// The generic codes mirror HTTP status semantics. The domain-specific ones
// separate the two failure sources a handler cannot convey by status
// alone: the model provider (model_failure) and the local store
// (store_failure).
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeModelFailure = "model_failure"
	ErrCodeStoreFailure = "store_failure"
)
