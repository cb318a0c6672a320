package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

// Option tweaks the underlying resty.Client.
type Option func(*resty.Client)

// WithLogger routes resty's own warnings to the given logger.
func WithLogger(l resty.Logger) Option {
	return func(c *resty.Client) {
		if l != nil {
			c.SetLogger(l)
		}
	}
}

// WithCookieJar replaces the default public-suffix aware cookie jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *resty.Client) {
		c.SetCookieJar(jar)
	}
}

// WithAuthToken sends "Authorization: Bearer <token>" on every request.
func WithAuthToken(token string) Option {
	return func(c *resty.Client) {
		if token = strings.TrimSpace(token); token != "" {
			c.SetAuthToken(token)
		}
	}
}

// NewRestyClient creates a new RestyClient with the specified timeout.
// A zero timeout leaves requests unbounded.
func NewRestyClient(timeout time.Duration, opts ...Option) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout, opts...)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration, opts ...Option) *resty.Client {
	return newRestyBaseClient(timeout, opts...)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration, opts ...Option) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		c.SetCookieJar(jar)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return r.Do(ctx, &Request{Method: http.MethodGet, URL: url, Headers: headers})
}

// Do executes the request exactly once.
func (r *RestyClient) Do(ctx context.Context, in *Request) (Response, error) {
	if in == nil {
		return nil, fmt.Errorf("nil request")
	}
	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	req := r.client.R().SetContext(ctx)
	r.mu.RLock()
	if r.token != "" {
		req.SetAuthToken(r.token)
	}
	r.mu.RUnlock()
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}

	switch {
	case in.IsMultipart():
		fields := make([]*resty.MultipartField, 0, len(in.Parts))
		for _, p := range in.Parts {
			fields = append(fields, multipartField(p))
		}
		req.SetMultipartFields(fields...)
	case in.Body != nil:
		req.SetBody(in.Body)
	}

	resp, err := req.Execute(method, in.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func multipartField(p Part) *resty.MultipartField {
	f := &resty.MultipartField{
		Param:       p.Name,
		FileName:    p.FileName,
		ContentType: p.ContentType,
		Reader:      p.Reader,
	}
	if f.Reader == nil {
		f.Reader = strings.NewReader(p.Value)
	}
	return f
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
func (r *restyResponseAdapter) IsSuccess() bool { return r.resp.IsSuccess() }

// SetAuthToken sets the bearer token for subsequent requests. It takes
// precedence over WithAuthToken; an empty token falls back to it.
func (r *RestyClient) SetAuthToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = strings.TrimSpace(token)
}
