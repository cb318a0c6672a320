package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Adda-Baaj/lekha/pkg/httpclient"
)

const (
	// BasePath is the fixed API prefix appended to the site URL.
	BasePath = "/api"
	// CSRFHeaderName carries the anti-forgery token on JSON requests.
	CSRFHeaderName = "X-CSRF-TOKEN"

	contentTypeJSON = "application/json"
)

// Config holds the immutable client settings.
type Config struct {
	// SiteURL is the origin of the website, e.g. https://example.com.
	SiteURL string
	// CSRFToken is the page-embedded anti-forgery token, if any.
	CSRFToken string
	// AuthToken is a bearer session token sent with every request.
	AuthToken string
	// Timeout bounds each request; zero means no client-side timeout.
	Timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger that receives request failures.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		c.log = ensureLogger(log)
	}
}

// WithTransportOptions passes options to the default resty transport.
func WithTransportOptions(opts ...httpclient.Option) Option {
	return func(c *Client) {
		c.transportOpts = append(c.transportOpts, opts...)
	}
}

// Client is the single funnel for calls to the website API. It is safe for
// concurrent use.
type Client struct {
	baseURL        string
	defaultHeaders map[string]string
	csrfToken      string
	http           httpclient.Client
	transportOpts  []httpclient.Option
	log            Logger
}

// New builds a client. No network activity happens here.
func New(cfg Config, opts ...Option) (*Client, error) {
	site := strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	if site == "" {
		return nil, fmt.Errorf("site url is required")
	}
	u, err := url.Parse(site)
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("site url %q must be absolute", cfg.SiteURL)
	}

	c := &Client{
		baseURL: site + BasePath,
		defaultHeaders: map[string]string{
			"Content-Type": contentTypeJSON,
			"Accept":       contentTypeJSON,
		},
		csrfToken: strings.TrimSpace(cfg.CSRFToken),
		log:       noopLogger{},
	}
	if c.csrfToken != "" {
		c.defaultHeaders[CSRFHeaderName] = c.csrfToken
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.http == nil {
		topts := append([]httpclient.Option{httpclient.WithAuthToken(cfg.AuthToken)}, c.transportOpts...)
		c.http = httpclient.NewRestyClient(cfg.Timeout, topts...)
	}
	return c, nil
}

// BaseURL returns the prefix every endpoint is appended to.
func (c *Client) BaseURL() string { return c.baseURL }

// DefaultHeaders returns a copy of the headers sent with JSON requests.
func (c *Client) DefaultHeaders() map[string]string {
	return maps.Clone(c.defaultHeaders)
}

// CSRFHeader returns the CSRF header pair, or ok=false when no token is set.
// Form requests do not carry it; upload callers that need it add it via Form.SetHeader.
func (c *Client) CSRFHeader() (name, value string, ok bool) {
	if c.csrfToken == "" {
		return "", "", false
	}
	return CSRFHeaderName, c.csrfToken, true
}

// Request performs one call against baseURL+endpoint. With useFormData the
// data must be a *Form and is sent untouched without the default headers;
// otherwise data (if non-nil) is sent as JSON.
func (c *Client) Request(ctx context.Context, endpoint, method string, data any, useFormData bool) (Result, error) {
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)
	target := c.baseURL + endpoint

	if endpoint == "" {
		return nil, c.fail(method, target, ErrEmptyEndpoint)
	}

	req, err := c.buildRequest(method, target, data, useFormData)
	if err != nil {
		return nil, c.fail(method, target, err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, c.fail(method, target, &TransportError{Method: method, URL: target, Err: err})
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return nil, c.fail(method, target, newAPIError(method, target, resp.StatusCode(), body))
	}
	if !json.Valid(body) {
		return nil, c.fail(method, target, fmt.Errorf("%s %s: %w", method, target, ErrMalformedResponse))
	}
	return Result(body), nil
}

func (c *Client) buildRequest(method, target string, data any, useFormData bool) (*httpclient.Request, error) {
	req := &httpclient.Request{Method: method, URL: target}

	if useFormData {
		form, err := asForm(data)
		if err != nil {
			return nil, err
		}
		req.Headers = maps.Clone(form.Header)
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Parts = form.Parts()
		if req.Parts == nil {
			req.Parts = []httpclient.Part{}
		}
		return req, nil
	}

	req.Headers = maps.Clone(c.defaultHeaders)
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		req.Body = raw
	}
	return req, nil
}

func asForm(data any) (*Form, error) {
	switch f := data.(type) {
	case *Form:
		if f == nil {
			return nil, ErrInvalidForm
		}
		return f, nil
	case Form:
		return &f, nil
	default:
		return nil, ErrInvalidForm
	}
}

// fail logs err and hands it back.
func (c *Client) fail(method, target string, err error) error {
	fields := map[string]any{
		"method": method,
		"url":    target,
		"error":  err.Error(),
	}
	if apiErr, ok := err.(*APIError); ok {
		fields["status"] = apiErr.StatusCode
	}
	c.log.ErrorObj("api request failed", "api_error", fields)
	return err
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string) (Result, error) {
	return c.Request(ctx, endpoint, http.MethodGet, nil, false)
}

// Post issues a JSON POST request.
func (c *Client) Post(ctx context.Context, endpoint string, data any) (Result, error) {
	return c.Request(ctx, endpoint, http.MethodPost, data, false)
}

// PostForm issues a multipart POST request.
func (c *Client) PostForm(ctx context.Context, endpoint string, form *Form) (Result, error) {
	return c.Request(ctx, endpoint, http.MethodPost, form, true)
}

// Put issues a JSON PUT request.
func (c *Client) Put(ctx context.Context, endpoint string, data any) (Result, error) {
	return c.Request(ctx, endpoint, http.MethodPut, data, false)
}

// PutForm issues a multipart PUT request.
func (c *Client) PutForm(ctx context.Context, endpoint string, form *Form) (Result, error) {
	return c.Request(ctx, endpoint, http.MethodPut, form, true)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string) (Result, error) {
	return c.Request(ctx, endpoint, http.MethodDelete, nil, false)
}

// UploadFile posts file under the "file" field followed by extra fields in order.
func (c *Client) UploadFile(ctx context.Context, endpoint string, file File, extra Params) (Result, error) {
	form := NewForm().AppendFile("file", file)
	for _, kv := range extra {
		form.Append(kv.Key, kv.Value)
	}
	return c.PostForm(ctx, endpoint, form)
}
