// errors.go: public error surface for cache operations
//
// This file re-exports the structured error codes and constructors from
// internal/cerr (built on go-errors) under the package's own names, so
// callers never need to import an internal package to type-switch on a
// cache error.
//
// SPDX-License-Identifier: MPL-2.0
package tinylfu

import (
	goerrors "errors"

	"github.com/agilira/go-errors"

	"github.com/ashgrove-cache/tinylfu/internal/cerr"
)

// Error codes for cache operations, grouped by kind.
const (
	// Configuration errors (1xxx)
	ErrCodeInvalidConfig      = cerr.CodeInvalidConfig
	ErrCodeInvalidMaxSize     = cerr.CodeInvalidMaxSize
	ErrCodeMissingWeigher     = cerr.CodeInvalidWeigher
	ErrCodeConflictingExpiry  = cerr.CodeConflictingExpiry
	ErrCodeInvalidWindowRatio = cerr.CodeInvalidWindowRatio

	// Operation errors (2xxx)
	ErrCodeEmptyKey       = cerr.CodeEmptyKey
	ErrCodeEvictionFailed = cerr.CodeEvictionFailed
	ErrCodeCacheClosed    = cerr.CodeCacheClosed
	ErrCodeReadOnly       = cerr.CodeReadOnlyViolation

	// Loader errors (3xxx)
	ErrCodeLoaderFailed   = cerr.CodeLoaderFailed
	ErrCodeInvalidLoader  = cerr.CodeInvalidLoader
	ErrCodePanicRecovered = cerr.CodePanicRecovered

	// Timeout / cancellation (4xxx)
	ErrCodeTimeout   = cerr.CodeTimeout
	ErrCodeCancelled = cerr.CodeCancelled

	// Invariant violations (5xxx) — internal, always a policy bug
	ErrCodeInvariantViolation = cerr.CodeInvariantViolation
)

// NewErrInvalidMaxSize reports a non-positive MaxSize.
func NewErrInvalidMaxSize(size int) error { return cerr.InvalidMaxSize(size) }

// NewErrMissingWeigher reports MaximumWeight configured without a Weigher.
func NewErrMissingWeigher() error { return cerr.MissingWeigher() }

// NewErrConflictingExpiry reports expiry settings that can never both hold.
func NewErrConflictingExpiry(reason string) error { return cerr.ConflictingExpiry(reason) }

// NewErrInvalidWindowRatio reports a window ratio outside (0, 1).
func NewErrInvalidWindowRatio(ratio float64) error { return cerr.InvalidWindowRatio(ratio) }

// NewErrEmptyKey reports a rejected zero-value key for the named operation.
func NewErrEmptyKey(operation string) error { return cerr.EmptyKey(operation) }

// NewErrEvictionFailed reports that no victim could be selected while the
// cache was over its size or weight bound. This always indicates a policy
// bug, never a caller mistake.
func NewErrEvictionFailed(reason string) error { return cerr.EvictionFailed(reason) }

// NewErrCacheClosed reports an operation attempted after Close.
func NewErrCacheClosed(operation string) error { return cerr.CacheClosed(operation) }

// NewErrReadOnly reports a mutation attempted on a read-only cache.
func NewErrReadOnly(operation string) error { return cerr.ReadOnlyViolation(operation) }

// NewErrLoaderFailed wraps an error returned by a caller-supplied loader.
func NewErrLoaderFailed(key string, cause error) error { return cerr.LoaderFailed(key, cause) }

// NewErrInvalidLoader reports GetOrLoad called on a cache configured with
// neither Loader nor AsyncLoader.
func NewErrInvalidLoader(key string) error { return cerr.InvalidLoader(key) }

// NewErrPanicRecovered reports a recovered panic from a loader or listener.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return cerr.PanicRecovered(operation, panicValue)
}

// NewErrTimeout reports a deadline exceeded on a blocking operation.
func NewErrTimeout(operation string) error { return cerr.Timeout(operation) }

// NewErrCancelled reports an operation aborted by shutdown or cancellation.
func NewErrCancelled(operation string) error { return cerr.Cancelled(operation) }

// IsNotFound always reports false: a miss is represented as (zero, false),
// never an error, throughout this package's API. Kept for symmetry with the
// other Is* helpers and for callers migrating from key/value stores that do
// error on a miss.
func IsNotFound(err error) bool { return false }

// IsEmptyKey reports whether err is an empty-key rejection.
func IsEmptyKey(err error) bool { return errors.HasCode(err, cerr.CodeEmptyKey) }

// IsConfigError reports whether err originated from Config.Validate.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		switch coder.ErrorCode() {
		case cerr.CodeInvalidConfig, cerr.CodeInvalidMaxSize, cerr.CodeInvalidWeigher,
			cerr.CodeConflictingExpiry, cerr.CodeInvalidWindowRatio:
			return true
		}
	}
	return false
}

// IsOperationError reports whether err originated from a cache operation
// rather than configuration or loading.
func IsOperationError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		switch coder.ErrorCode() {
		case cerr.CodeEvictionFailed, cerr.CodeCacheClosed, cerr.CodeReadOnlyViolation, cerr.CodeEmptyKey:
			return true
		}
	}
	return false
}

// IsLoaderError reports whether err originated from GetOrLoad's loader call.
func IsLoaderError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		switch coder.ErrorCode() {
		case cerr.CodeLoaderFailed, cerr.CodeInvalidLoader, cerr.CodeTimeout, cerr.CodeCancelled:
			return true
		}
	}
	return false
}

// IsInvariantViolation reports whether err indicates a policy bug: the
// eviction policy failed to restore a size or weight invariant.
func IsInvariantViolation(err error) bool {
	return errors.HasCode(err, cerr.CodeInvariantViolation)
}

// IsRetryable reports whether the error is marked retryable.
func IsRetryable(err error) bool { return cerr.IsRetryable(err) }

// GetErrorCode extracts the error code from an error, or "" if none.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts the diagnostic context map from an error, or nil
// if err does not carry one.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if goerrors.As(err, &e) {
		return e.Context
	}
	return nil
}
