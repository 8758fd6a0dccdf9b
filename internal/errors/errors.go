package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (declined prompt, invalid
	// input, nothing installed, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions,
	// corrupt source, failed verification, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrAborted indicates the user declined a confirmation prompt.
	ErrAborted = errors.New("aborted")

	// ErrNotInstalled indicates the requested layout is not installed.
	ErrNotInstalled = errors.New("not installed")

	// ErrSourceInvalid indicates the install source is missing required
	// corpus files.
	ErrSourceInvalid = errors.New("invalid source")

	// ErrVerifyFailed indicates a post-install verification found
	// missing marker files.
	ErrVerifyFailed = errors.New("verification failed")

	// ErrUnknownLayout indicates an unrecognized layout name.
	ErrUnknownLayout = errors.New("unknown layout")

	// ErrUnknownAssistant indicates an unrecognized assistant name.
	ErrUnknownAssistant = errors.New("unknown assistant")
)

// ExitError wraps an error with an exit code and optional suggestion for CLI
// applications. It implements the error interface and supports unwrapping via
// errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Code extracts the exit code from an error chain. A nil error maps to
// ExitSuccess; an error without an ExitError in its chain maps to ExitUser.
func Code(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}
