package session

import (
	"net/http"

	"github.com/lanzouproxy/lanzouproxy/internal/common/apperrors"
)

var (
	ErrGatewayError     apperrors.Error = apperrors.New("gateway error")
	ErrNotAuthenticated apperrors.Error = ErrGatewayError.New("not logged in").SetStatusCode(http.StatusUnauthorized)
	ErrUpstreamRejected apperrors.Error = ErrGatewayError.New("upstream rejected request").SetStatusCode(http.StatusBadGateway)
	ErrTransportFailure apperrors.Error = ErrGatewayError.New("upstream unreachable").SetStatusCode(http.StatusBadGateway)
	ErrInvalidRequest   apperrors.Error = ErrGatewayError.New("invalid request").SetStatusCode(http.StatusBadRequest)
)

// Fallback messages used when the portal rejects a call without an info string.
const (
	msgLoginFailed      = "login failed"
	msgLoginSucceeded   = "login successful"
	msgNoSessionCookies = "login response carried no session cookies"
	msgFoldersFailed    = "failed to fetch folder list"
	msgFilesFailed      = "failed to fetch file list"
	msgMkdirFailed      = "failed to create folder"
	msgDeleteFailed     = "failed to delete file"
	msgShareFailed      = "failed to fetch share link"
	msgDownloadFailed   = "failed to fetch download link"
	msgRecycleFailed    = "failed to fetch recycle bin"
	msgRestoreFailed    = "failed to restore file"
	msgClearFailed      = "failed to clear recycle bin"
)
