/*
Package errs provides the coordinator's error types and application-level
error code constants.

This file defines the CustomError struct, which implements the standard Go
error interface and carries a business code, a taxonomy kind, a user-facing
message, and an HTTP status for the REST surface.
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hubble/internal/pkg/logx"
)

// Kind classifies an error for callers that care about retry semantics
// rather than the exact code.
type Kind string

const (
	// KindValidation covers malformed input; the caller corrects and retries.
	KindValidation Kind = "validation"

	// KindPermission covers authorization failures; not retried automatically.
	KindPermission Kind = "permission"

	// KindRateLimited covers transient throttling; the caller backs off.
	KindRateLimited Kind = "rate_limited"

	// KindNotFound covers absent rooms, messages, or users.
	KindNotFound Kind = "not_found"

	// KindException covers unexpected internal faults.
	KindException Kind = "exception"
)

// CustomError is the error structure used throughout the application.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Kind is the taxonomy classification for the code.
	Kind Kind

	// Message is the user-friendly error description.
	Message string

	// Status is the HTTP status code used when the error crosses the REST surface.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (%s): %s", e.Code, e.Kind, e.Message)
}

// New constructs a *CustomError from a predefined error code. The optional
// details are printf-style arguments applied to message templates that carry
// placeholders. Unknown codes fall back to ErrUnknown.
func New(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			errors.New("unknown error code requested"),
			"errs.New called with a code missing from errorMap",
			"requested_code", code,
		)
		template = errorMap[ErrUnknown]
	}

	customErr := template

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if code == ErrUnknown && len(details) > 0 {
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "Handling ErrUnknown with underlying error")
		}
	} else if len(details) > 0 && strings.Contains(customErr.Message, "%") {
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	}

	return &customErr
}

// KindOf reports the taxonomy kind of err, or KindException when err is not
// a *CustomError.
func KindOf(err error) Kind {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Kind
	}
	return KindException
}
