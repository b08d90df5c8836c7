// Package cerr provides structured error construction for the cache core,
// built on top of github.com/agilira/go-errors so every failure carries an
// error code, retryability flag, and diagnostic context.
package cerr

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes, grouped by the kind taxonomy in the core's error-handling design.
const (
	// ConfigurationError (1xxx)
	CodeInvalidConfig      errors.ErrorCode = "TLFU_INVALID_CONFIG"
	CodeInvalidMaxSize     errors.ErrorCode = "TLFU_INVALID_MAX_SIZE"
	CodeInvalidWeigher     errors.ErrorCode = "TLFU_MISSING_WEIGHER"
	CodeConflictingExpiry  errors.ErrorCode = "TLFU_CONFLICTING_EXPIRY"
	CodeInvalidWindowRatio errors.ErrorCode = "TLFU_INVALID_WINDOW_RATIO"

	// Operation errors (2xxx)
	CodeEmptyKey          errors.ErrorCode = "TLFU_EMPTY_KEY"
	CodeEvictionFailed    errors.ErrorCode = "TLFU_EVICTION_FAILED"
	CodeCacheClosed       errors.ErrorCode = "TLFU_CACHE_CLOSED"
	CodeReadOnlyViolation errors.ErrorCode = "TLFU_READ_ONLY"

	// LoadFailure (3xxx)
	CodeLoaderFailed    errors.ErrorCode = "TLFU_LOADER_FAILED"
	CodeInvalidLoader   errors.ErrorCode = "TLFU_INVALID_LOADER"
	CodePanicRecovered  errors.ErrorCode = "TLFU_PANIC_RECOVERED"

	// Timeout / Cancelled (4xxx)
	CodeTimeout   errors.ErrorCode = "TLFU_TIMEOUT"
	CodeCancelled errors.ErrorCode = "TLFU_CANCELLED"

	// InvariantViolation (5xxx) — internal, fatal
	CodeInvariantViolation errors.ErrorCode = "TLFU_INVARIANT_VIOLATION"
)

// InvalidMaxSize reports a non-positive MaxSize at construction time.
func InvalidMaxSize(size int) error {
	return errors.NewWithContext(CodeInvalidMaxSize, "max size must be greater than zero", map[string]interface{}{
		"provided_size": size,
	})
}

// MissingWeigher reports MaximumWeight configured without a Weigher.
func MissingWeigher() error {
	return errors.NewWithField(CodeInvalidWeigher, "maximum_weight requires a weigher function", "maximum_weight", "set")
}

// ConflictingExpiry reports expiry settings that cannot both hold.
func ConflictingExpiry(reason string) error {
	return errors.NewWithField(CodeConflictingExpiry, "conflicting expiration configuration", "reason", reason)
}

// InvalidWindowRatio reports a window ratio outside (0, 1).
func InvalidWindowRatio(ratio float64) error {
	return errors.NewWithContext(CodeInvalidWindowRatio, "window ratio must be between 0.0 and 1.0 exclusive", map[string]interface{}{
		"provided_ratio": ratio,
	})
}

// EmptyKey reports a rejected nil/zero-value key input for the named operation.
func EmptyKey(operation string) error {
	return errors.NewWithField(CodeEmptyKey, "key must not be empty", "operation", operation)
}

// EvictionFailed reports that no victim could be selected while over capacity.
// This is an InvariantViolation: it indicates a policy bug, not recoverable
// caller behavior.
func EvictionFailed(reason string) error {
	return errors.NewWithField(CodeInvariantViolation, "eviction policy failed to select a victim while over capacity", "reason", reason)
}

// CacheClosed reports an operation attempted after Close.
func CacheClosed(operation string) error {
	return errors.NewWithField(CodeCacheClosed, "cache is closed", "operation", operation).AsRetryable()
}

// ReadOnlyViolation reports a mutation attempted on a read-only cache.
func ReadOnlyViolation(operation string) error {
	return errors.NewWithField(CodeReadOnlyViolation, "cache is configured read-only and rejects mutation", "operation", operation)
}

// LoaderFailed wraps an error returned by a user loader.
func LoaderFailed(key string, cause error) error {
	return errors.Wrap(cause, CodeLoaderFailed, "loader function failed").
		WithContext("key", key).
		AsRetryable()
}

// InvalidLoader reports GetOrLoad called on a cache configured with neither
// Loader nor AsyncLoader.
func InvalidLoader(key string) error {
	return errors.NewWithField(CodeInvalidLoader, "loader function must not be nil", "key", key)
}

// PanicRecovered reports a loader or listener panic that was recovered.
func PanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(CodePanicRecovered, "panic recovered during cache operation", map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// Timeout reports a deadline exceeded on a blocking operation.
func Timeout(operation string) error {
	return errors.NewWithField(CodeTimeout, "operation deadline exceeded", "operation", operation)
}

// Cancelled reports an operation aborted by shutdown or caller cancellation.
func Cancelled(operation string) error {
	return errors.NewWithField(CodeCancelled, "operation was cancelled", "operation", operation)
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code errors.ErrorCode) bool {
	return errors.HasCode(err, code)
}

// IsRetryable reports whether err is marked retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r errors.Retryable
	if goerrors.As(err, &r) {
		return r.IsRetryable()
	}
	return false
}
