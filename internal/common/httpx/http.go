// Package httpx provides HTTP request/response handling utilities. Handlers
// return a Response or an error and WrapHttpRsp turns either into JSON.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lanzouproxy/lanzouproxy/internal/common/apperrors"
)

// maxRequestBody bounds JSON request bodies; the API only accepts small objects.
const maxRequestBody = 1 << 20

// GetRequestData parses a JSON request body into data.
// Only supports POST and PUT methods.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil || r.Body == http.NoBody {
		log.Ctx(r.Context()).Debug().Msg("empty request body")
		return ErrUnableToParseReqData()
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(data); err != nil {
		return ErrUnableToParseReqData()
	}
	return nil
}

// Response is a JSON response with its status code.
type Response struct {
	StatusCode int
	Response   any
}

// RequestHandler defines a function type for handling HTTP requests.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp adapts a RequestHandler to http.HandlerFunc, writing either the
// response body or the error as JSON.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			sendErr(w, err)
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		statusCode := rsp.StatusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		SendJsonRsp(r.Context(), w, statusCode, rsp.Response)
	}
}

func sendErr(w http.ResponseWriter, err error) {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		httpErr.Send(w)
		return
	}
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		SendError(w, appErr)
		return
	}
	ErrApplicationError(err.Error()).Send(w)
}
