package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/lanzouproxy/lanzouproxy/internal/common/apperrors"
)

// Error is an HTTP error response with status code and description.
// It is written in the same {success, message} envelope as gateway results.
type Error struct {
	Description string
	StatusCode  int
}

type errorRsp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send writes the error response. A nil writer is ignored.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	rspJson, err := json.Marshal(&errorRsp{Message: e.Description})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Unable to parse error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	w.Write(rspJson)
}

func (e *Error) Error() string {
	return e.Description
}

// SendError sends an application error as an HTTP error response.
// A zero status code becomes 500.
func SendError(w http.ResponseWriter, err apperrors.Error) {
	if err == nil {
		return
	}
	statusCode := err.StatusCode()
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	(&Error{
		StatusCode:  statusCode,
		Description: err.ErrorAll(),
	}).Send(w)
}

func firstOr(s []string, def string) string {
	if len(s) > 0 && s[0] != "" {
		return s[0]
	}
	return def
}

// ErrReqMethodNotSupported returns an error for unsupported HTTP methods.
func ErrReqMethodNotSupported() *Error {
	return &Error{
		Description: "request method not supported",
		StatusCode:  http.StatusMethodNotAllowed,
	}
}

// ErrUnableToParseReqData returns an error when request data cannot be parsed.
func ErrUnableToParseReqData() *Error {
	return &Error{
		Description: "unable to parse request data",
		StatusCode:  http.StatusBadRequest,
	}
}

// ErrApplicationError returns an error for application-level failures.
func ErrApplicationError(msg ...string) *Error {
	return &Error{
		Description: firstOr(msg, "unable to process request"),
		StatusCode:  http.StatusInternalServerError,
	}
}

// ErrInvalidRequest returns an error for invalid request data.
func ErrInvalidRequest(msg ...string) *Error {
	return &Error{
		Description: firstOr(msg, "invalid request data or empty request values"),
		StatusCode:  http.StatusBadRequest,
	}
}

// ErrNotFound returns an error for unknown routes.
func ErrNotFound() *Error {
	return &Error{
		Description: "not found",
		StatusCode:  http.StatusNotFound,
	}
}
