package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg        string
	base       error
	wrapped    []error
	statusCode int
	expand     bool
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the message followed by the wrapped errors when expansion
// is enabled, otherwise the plain message. Wrapped errors repeating the
// message are skipped.
func (e *appError) ErrorAll() string {
	if !e.expand || len(e.wrapped) == 0 {
		return e.msg
	}
	parts := make([]string, 0, len(e.wrapped)+1)
	parts = append(parts, e.msg)
	for _, err := range e.wrapped {
		if m := err.Error(); m != e.msg {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, "; ")
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.wrapped
}

func (e *appError) derive(msg string, extra ...error) *appError {
	wrapped := make([]error, 0, len(extra)+1)
	wrapped = append(wrapped, e)
	wrapped = append(wrapped, extra...)
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    wrapped,
		statusCode: e.statusCode,
		expand:     e.expand,
	}
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statusCode: e.statusCode,
	}
}

func (e *appError) Msg(msg string) Error {
	return e.derive(msg)
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return e.derive(msg, errs...)
}

func (e *appError) Err(errs ...error) Error {
	return e.derive(e.msg, errs...)
}

func (e *appError) SetExpandError(flag bool) Error {
	cp := *e
	cp.expand = flag
	return &cp
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statusCode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statusCode
}

// Is matches the target against the base chain and every wrapped error.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrapped {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
