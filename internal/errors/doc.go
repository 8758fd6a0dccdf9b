// Package errors provides error handling conventions for the swb CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [errors.Is]:
//
//	if errors.Is(err, swberrors.ErrNotInstalled) {
//	    // handle not-installed case
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (declined prompt, invalid input)
//   - ExitSystem (2): System-related error (I/O, permissions, verification)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion for CLI applications. It supports error unwrapping via
// [errors.Unwrap] and [errors.As]:
//
//	err := swberrors.NewUserError(swberrors.ErrNotInstalled, "Run: swb install plugin")
//	var exitErr *swberrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
