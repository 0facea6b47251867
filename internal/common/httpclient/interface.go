package httpclient

import (
	"context"
	"io"
)

// HTTPClientInterface is the subset of HTTPClient used by its consumers.
type HTTPClientInterface interface {
	Do(ctx context.Context, opts RequestOptions) (*Response, error)
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error)
	StreamRequest(ctx context.Context, opts RequestOptions) (io.ReadCloser, int64, error)
}

var _ HTTPClientInterface = &HTTPClient{}
