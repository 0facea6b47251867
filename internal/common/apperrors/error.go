// Package apperrors provides chainable application errors that carry an HTTP
// status code. Errors are built from package-level sentinels so that callers
// can classify any derived error with errors.Is.
package apperrors

// Error is the application error interface. Every derivation method returns a
// new value; sentinels are never mutated.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // fresh error with this one as its base
	Msg(msg string) Error                  // new message, wraps the current error
	MsgErr(msg string, err ...error) Error // new message, wraps current and extra errors
	Err(err ...error) Error                // same message, attaches extra errors
	SetExpandError(bool) Error             // whether ErrorAll lists wrapped errors
	SetStatusCode(int) Error               // HTTP status code for the error
	StatusCode() int
	ErrorAll() string
	UnwrapAll() []error
}

// New creates a root error with the given message.
func New(msg string) Error {
	return &appError{msg: msg}
}
