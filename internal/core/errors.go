package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatExecution  ErrorCategory = "execution"  // Runtime failure
	ErrCatTimeout    ErrorCategory = "timeout"    // Operation timed out
	ErrCatRateLimit  ErrorCategory = "rate_limit" // Provider rate limited
	ErrCatAuth       ErrorCategory = "auth"       // Authentication failure
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatState      ErrorCategory = "state"      // State corruption/conflict
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrCliNotFound creates an error for a missing provider CLI binary.
// The install source is included so the operator knows how to fix it.
func ErrCliNotFound(command, installPkg string) *DomainError {
	return &DomainError{
		Category:  ErrCatNotFound,
		Code:      CodeCliNotFound,
		Message:   fmt.Sprintf("%s CLI not found, install with: npm install -g %s", command, installPkg),
		Retryable: false,
		Details: map[string]interface{}{
			"command":     command,
			"install_pkg": installPkg,
		},
	}
}

// ErrAuth creates an authentication error. The command name lets the
// message point at the login flow of the right CLI.
func ErrAuth(command, diagnostic string) *DomainError {
	return &DomainError{
		Category:  ErrCatAuth,
		Code:      CodeAuthFailed,
		Message:   fmt.Sprintf("authentication failed, run '%s login' or set the provider API key: %s", command, diagnostic),
		Retryable: false,
	}
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(diagnostic string) *DomainError {
	return &DomainError{
		Category:  ErrCatRateLimit,
		Code:      CodeRateLimited,
		Message:   diagnostic,
		Retryable: true,
	}
}

// ErrTimeout creates a timeout error.
func ErrTimeout(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      CodeTimeout,
		Message:   message,
		Retryable: true,
	}
}

// ErrCliExecution creates an error for a CLI that exited non-zero.
// The raw stderr diagnostic is preserved verbatim for operator action.
func ErrCliExecution(exitCode int, stderr string) *DomainError {
	return &DomainError{
		Category:  ErrCatExecution,
		Code:      CodeCliError,
		Message:   fmt.Sprintf("command failed with exit code %d: %s", exitCode, stderr),
		Retryable: true,
		Details: map[string]interface{}{
			"exit_code": exitCode,
		},
	}
}

// ErrMalformedOutput creates an error for unparseable provider output.
// Respawning with identical flags produces the same garbage, so this is
// not retryable.
func ErrMalformedOutput(diagnostic string) *DomainError {
	return &DomainError{
		Category:  ErrCatExecution,
		Code:      CodeMalformedOutput,
		Message:   diagnostic,
		Retryable: false,
	}
}

// ErrExecution creates a generic execution error.
func ErrExecution(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatExecution,
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrState creates a state error.
func ErrState(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatState,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrContextInconsistency reports a broken execution-context invariant.
func ErrContextInconsistency(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatState,
		Code:      CodeContextInconsistent,
		Message:   message,
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeCliNotFound         = "CLI_NOT_FOUND"
	CodeAuthFailed          = "AUTH_FAILED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeTimeout             = "TIMEOUT"
	CodeCliError            = "CLI_ERROR"
	CodeMalformedOutput     = "MALFORMED_OUTPUT"
	CodeContextInconsistent = "CONTEXT_INCONSISTENT"
	CodeCancelled           = "CANCELLED"
	CodePreflightFailed     = "PREFLIGHT_FAILED"

	// Validation error codes
	CodeEmptyWorkflow  = "EMPTY_WORKFLOW"
	CodeEmptyPrompt    = "EMPTY_PROMPT"
	CodeDuplicateStep  = "DUPLICATE_STEP"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeInvalidTimeout = "INVALID_TIMEOUT"
)
