package errors

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Connection and availability (retryable).
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
)

// Resources.
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeConflict      ErrorCode = "CONFLICT"
)

// Input and configuration.
const (
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Container wiring.
const (
	// ErrCodeBeanNotFound means no bean is registered under the requested name or type.
	ErrCodeBeanNotFound ErrorCode = "BEAN_NOT_FOUND"
	// ErrCodeBeanCreation means a bean factory returned an error.
	ErrCodeBeanCreation ErrorCode = "BEAN_CREATION_FAILED"
	// ErrCodeAmbiguousBean means a type lookup matched several beans and none is primary.
	ErrCodeAmbiguousBean ErrorCode = "AMBIGUOUS_BEAN"
	// ErrCodeOrderingCycle means configuration ordering constraints form a cycle.
	ErrCodeOrderingCycle ErrorCode = "ORDERING_CYCLE"
)

// Internal.
const (
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeDatabaseError:      true,
	ErrCodeTransactionFailed:  true,
}

// IsRetryableCode reports whether errors with code may succeed on retry.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
