package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// New creates an AppError whose retryable flag follows the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// ServiceUnavailable reports a dependency that is up but not serving.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable).
		WithDetail("service", service)
}

// ConnectionFailed reports a dependency that could not be reached.
func ConnectionFailed(service string) *AppError {
	return New(ErrCodeConnectionFailed, fmt.Sprintf("unable to connect to %s", service), http.StatusServiceUnavailable).
		WithDetail("service", service)
}

// Timeout reports an operation that exceeded its deadline.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("%s timed out", operation), http.StatusGatewayTimeout).
		WithDetail("operation", operation)
}

// NotFound reports a missing resource. An empty id is omitted from details.
func NotFound(resource, id string) *AppError {
	err := New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound).
		WithDetail("resource", resource)
	if id != "" {
		err.WithDetail("id", id)
	}
	return err
}

func AlreadyExists(resource string) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource), http.StatusConflict).
		WithDetail("resource", resource)
}

func Conflict(reason string) *AppError {
	return New(ErrCodeConflict, reason, http.StatusConflict)
}

// InvalidInput reports a bad argument. An empty field is omitted from details.
func InvalidInput(field, reason string) *AppError {
	err := New(ErrCodeInvalidInput, fmt.Sprintf("invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// Validation wraps a validation failure message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("missing required field: %s", field), http.StatusBadRequest).
		WithDetail("field", field)
}

// InvalidConfig reports a configuration property that cannot be used.
func InvalidConfig(key, reason string) *AppError {
	return New(ErrCodeInvalidConfig, fmt.Sprintf("invalid configuration %s: %s", key, reason), http.StatusInternalServerError).
		WithDetail("key", key)
}

// BeanNotFound reports a failed container lookup.
func BeanNotFound(name string) *AppError {
	return New(ErrCodeBeanNotFound, fmt.Sprintf("no bean named %q", name), http.StatusInternalServerError).
		WithDetail("bean", name)
}

// BeanCreation wraps a factory failure.
func BeanCreation(name string, cause error) *AppError {
	return New(ErrCodeBeanCreation, fmt.Sprintf("creating bean %q failed", name), http.StatusInternalServerError).
		WithDetail("bean", name).
		WithCause(cause)
}

// AmbiguousBean reports several candidates for a type lookup without a primary one.
func AmbiguousBean(typeName string, candidates []string) *AppError {
	return New(ErrCodeAmbiguousBean, fmt.Sprintf("%d beans of type %s and none is primary", len(candidates), typeName), http.StatusInternalServerError).
		WithDetail("type", typeName).
		WithDetail("candidates", candidates)
}

// OrderingCycle reports configurations whose ordering constraints cannot be satisfied.
func OrderingCycle(names []string) *AppError {
	return New(ErrCodeOrderingCycle, fmt.Sprintf("ordering cycle between configurations %v", names), http.StatusInternalServerError).
		WithDetail("configurations", names)
}

func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "unexpected internal error", http.StatusInternalServerError).WithCause(cause)
}

func DatabaseError(cause error) *AppError {
	return New(ErrCodeDatabaseError, "database error", http.StatusInternalServerError).WithCause(cause)
}

// TransactionFailed wraps an aborted or failed commit.
func TransactionFailed(cause error) *AppError {
	return New(ErrCodeTransactionFailed, "transaction failed", http.StatusInternalServerError).WithCause(cause)
}
