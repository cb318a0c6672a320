package httpclient

import (
	"context"
	"io"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	IsSuccess() bool
}

// Part is one field of a multipart/form-data body. A part with a Reader is
// streamed as-is; otherwise Value is written.
type Part struct {
	Name        string
	Value       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Request describes a single outbound call. Parts takes precedence over Body;
// a nil Parts with a nil Body sends no payload.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	Parts   []Part
}

// IsMultipart reports whether the request carries a multipart payload.
func (r *Request) IsMultipart() bool {
	return r != nil && r.Parts != nil
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Do(ctx context.Context, req *Request) (Response, error)
}
