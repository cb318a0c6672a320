package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Adda-Baaj/lekha/pkg/httpclient"
)

type recordedRequest struct {
	Method  string
	URI     string
	Header  http.Header
	Body    []byte
	Form    map[string][]string
	Files   []string
	Ordered []string
}

type recordingLogger struct {
	noopLogger
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) ErrorObj(msg, _ string, _ interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

// newTestServer records the last request and answers with status/body.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.URI = r.URL.RequestURI()
		rec.Header = r.Header.Clone()
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			mr, err := r.MultipartReader()
			if err != nil {
				t.Errorf("multipart reader: %v", err)
				return
			}
			rec.Form = map[string][]string{}
			for {
				part, err := mr.NextPart()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Errorf("next part: %v", err)
					return
				}
				raw, _ := io.ReadAll(part)
				rec.Ordered = append(rec.Ordered, part.FormName())
				if part.FileName() != "" {
					rec.Files = append(rec.Files, part.FormName()+":"+part.FileName()+":"+string(raw))
					continue
				}
				rec.Form[part.FormName()] = append(rec.Form[part.FormName()], string(raw))
			}
		} else {
			rec.Body, _ = io.ReadAll(r.Body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(t *testing.T, siteURL string, cfg Config, opts ...Option) *Client {
	t.Helper()
	cfg.SiteURL = siteURL
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresAbsoluteSiteURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty site url")
	}
	if _, err := New(Config{SiteURL: "/relative"}); err == nil {
		t.Fatalf("expected error for relative site url")
	}
}

func TestNewMergesCSRFTokenIntoDefaultHeaders(t *testing.T) {
	c := newTestClient(t, "https://example.com/", Config{CSRFToken: "tok"})
	if c.BaseURL() != "https://example.com/api" {
		t.Fatalf("unexpected base url %q", c.BaseURL())
	}
	h := c.DefaultHeaders()
	if h["X-CSRF-TOKEN"] != "tok" || h["Content-Type"] != "application/json" || h["Accept"] != "application/json" {
		t.Fatalf("unexpected default headers %#v", h)
	}

	h["X-CSRF-TOKEN"] = "mutated"
	if c.DefaultHeaders()["X-CSRF-TOKEN"] != "tok" {
		t.Fatalf("DefaultHeaders must return a copy")
	}

	bare := newTestClient(t, "https://example.com", Config{})
	if _, ok := bare.DefaultHeaders()["X-CSRF-TOKEN"]; ok {
		t.Fatalf("csrf header must be absent without a token")
	}
	if _, _, ok := bare.CSRFHeader(); ok {
		t.Fatalf("CSRFHeader should report no token")
	}
}

func TestBlankCSRFTokenSendsNoHeader(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL, Config{CSRFToken: " \t\n"})

	if _, ok := c.DefaultHeaders()["X-CSRF-TOKEN"]; ok {
		t.Fatalf("whitespace token must not become a default header")
	}
	if _, err := c.Get(context.Background(), "/user/profile"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, present := rec.Header["X-Csrf-Token"]; present {
		t.Fatalf("expected no csrf header on the wire, got %q", rec.Header.Get("X-CSRF-TOKEN"))
	}

	padded := newTestClient(t, srv.URL, Config{CSRFToken: "  tok  "})
	if got := padded.DefaultHeaders()["X-CSRF-TOKEN"]; got != "tok" {
		t.Fatalf("expected trimmed token, got %q", got)
	}
}

func TestGetTargetsBaseURLPlusEndpointWithoutBody(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c := newTestClient(t, srv.URL, Config{CSRFToken: "tok"})

	res, err := c.Get(context.Background(), "/user")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Method != http.MethodGet || rec.URI != "/api/user" {
		t.Fatalf("unexpected request %s %s", rec.Method, rec.URI)
	}
	if len(rec.Body) != 0 {
		t.Fatalf("GET must not send a body, got %q", rec.Body)
	}
	if rec.Header.Get("Accept") != "application/json" || rec.Header.Get("X-CSRF-TOKEN") != "tok" {
		t.Fatalf("missing default headers: %#v", rec.Header)
	}
	m, err := res.Map()
	if err != nil || m["ok"] != true {
		t.Fatalf("unexpected result %s err=%v", res, err)
	}
}

func TestRequestDefaultsToGET(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL, Config{})
	if _, err := c.Request(context.Background(), "/settings", "", nil, false); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if rec.Method != http.MethodGet {
		t.Fatalf("expected GET, got %s", rec.Method)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusCreated, `{"id":7}`)
	c := newTestClient(t, srv.URL, Config{})

	payload := map[string]any{"title": "Hello", "tags": []string{"go"}}
	if _, err := c.Post(context.Background(), "/articles", payload); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if rec.Method != http.MethodPost || rec.URI != "/api/articles" {
		t.Fatalf("unexpected request %s %s", rec.Method, rec.URI)
	}
	if got := rec.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body, &got); err != nil {
		t.Fatalf("body is not JSON: %q", rec.Body)
	}
	if got["title"] != "Hello" {
		t.Fatalf("unexpected body %#v", got)
	}
}

func TestFormRequestOmitsDefaultHeaders(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"url":"/img.png"}`)
	c := newTestClient(t, srv.URL, Config{CSRFToken: "tok"})

	form := NewForm().Append("a", "1").Append("b", "2")
	if _, err := c.Request(context.Background(), "/user/avatar", http.MethodPost, form, true); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if !strings.HasPrefix(rec.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
		t.Fatalf("unexpected Content-Type %q", rec.Header.Get("Content-Type"))
	}
	if rec.Header.Get("X-CSRF-TOKEN") != "" {
		t.Fatalf("form requests must not carry the csrf header")
	}
	if rec.Header.Get("Accept") == "application/json" {
		t.Fatalf("form requests must not carry the JSON accept header")
	}
	if strings.Join(rec.Ordered, ",") != "a,b" || rec.Form["a"][0] != "1" {
		t.Fatalf("form passed through incorrectly: %#v", rec.Form)
	}
}

func TestFormRequestCarriesExplicitHeaders(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL, Config{CSRFToken: "tok"})

	name, value, ok := c.CSRFHeader()
	if !ok {
		t.Fatalf("expected csrf header")
	}
	form := NewForm().Append("a", "1").SetHeader(name, value)
	if _, err := c.PostForm(context.Background(), "/articles/image", form); err != nil {
		t.Fatalf("PostForm: %v", err)
	}
	if rec.Header.Get("X-CSRF-TOKEN") != "tok" {
		t.Fatalf("expected explicit csrf header on form request")
	}
}

func TestFormRequestRejectsNonFormPayload(t *testing.T) {
	c := newTestClient(t, "https://example.com", Config{}, WithHTTPClient(failingHTTPClient{t: t}))
	_, err := c.Request(context.Background(), "/user/avatar", http.MethodPost, map[string]string{"a": "b"}, true)
	if !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
}

func TestEmptyEndpointIsRejected(t *testing.T) {
	log := &recordingLogger{}
	c := newTestClient(t, "https://example.com", Config{}, WithHTTPClient(failingHTTPClient{t: t}), WithLogger(log))
	if _, err := c.Get(context.Background(), ""); !errors.Is(err, ErrEmptyEndpoint) {
		t.Fatalf("expected ErrEmptyEndpoint, got %v", err)
	}
	if log.count() != 1 {
		t.Fatalf("expected error to be logged once, got %d", log.count())
	}
}

func TestUploadFileBuildsMultipartPayload(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"url":"/a.png"}`)
	c := newTestClient(t, srv.URL, Config{})

	file := File{Name: "a.png", ContentType: "image/png", Reader: strings.NewReader("PNG")}
	if _, err := c.UploadFile(context.Background(), "/articles/image", file, P("caption", "hi", "alt", "pic")); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if rec.Method != http.MethodPost || rec.URI != "/api/articles/image" {
		t.Fatalf("unexpected request %s %s", rec.Method, rec.URI)
	}
	if len(rec.Files) != 1 || rec.Files[0] != "file:a.png:PNG" {
		t.Fatalf("unexpected files %#v", rec.Files)
	}
	if rec.Form["caption"][0] != "hi" {
		t.Fatalf("missing caption field %#v", rec.Form)
	}
	if strings.Join(rec.Ordered, ",") != "file,caption,alt" {
		t.Fatalf("unexpected part order %v", rec.Ordered)
	}
}

func TestErrorMessageFromBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"message":"Not found"}`)
	log := &recordingLogger{}
	c := newTestClient(t, srv.URL, Config{}, WithLogger(log))

	_, err := c.Get(context.Background(), "/articles/missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "Not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound")
	}
	if log.count() != 1 {
		t.Fatalf("expected one logged error, got %d", log.count())
	}
}

func TestErrorFallbackMessage(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unparsable", status: http.StatusInternalServerError, body: `<html>oops</html>`},
		{name: "empty", status: http.StatusBadGateway, body: ``},
		{name: "no message", status: http.StatusBadRequest, body: `{"error":"Title is required"}`},
		{name: "blank message", status: http.StatusForbidden, body: `{"message":""}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tc.status, tc.body)
			c := newTestClient(t, srv.URL, Config{})
			_, err := c.Delete(context.Background(), "/comments/1")
			if err == nil || err.Error() != DefaultErrorMessage {
				t.Fatalf("expected fallback message, got %v", err)
			}
			if !IsStatus(err, tc.status) {
				t.Fatalf("expected status %d in error", tc.status)
			}
		})
	}
}

func TestMalformedSuccessBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `not json`)
	c := newTestClient(t, srv.URL, Config{})
	if _, err := c.Get(context.Background(), "/user"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestTransportErrorIsWrappedAndLogged(t *testing.T) {
	boom := errors.New("connection reset")
	log := &recordingLogger{}
	c := newTestClient(t, "https://example.com", Config{}, WithHTTPClient(erroringHTTPClient{err: boom}), WithLogger(log))

	_, err := c.Get(context.Background(), "/user")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if !IsTransport(err) {
		t.Fatalf("expected IsTransport")
	}
	if log.count() != 1 {
		t.Fatalf("expected one logged error, got %d", log.count())
	}
}

func TestConcurrentCallsDoNotInterfere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"path": r.URL.Path,
			"body": string(raw),
			"ct":   r.Header.Get("Content-Type"),
		})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL, Config{})

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			endpoint := fmt.Sprintf("/comments/%d", i)
			var (
				res Result
				err error
			)
			if i%2 == 0 {
				res, err = c.Put(context.Background(), endpoint, map[string]int{"n": i})
			} else {
				res, err = c.PostForm(context.Background(), endpoint, NewForm().Append("n", i))
			}
			if err != nil {
				errs <- err
				return
			}
			got, err := Decode[map[string]string](res)
			if err != nil {
				errs <- err
				return
			}
			if got["path"] != "/api"+endpoint {
				errs <- fmt.Errorf("call %d got path %s", i, got["path"])
				return
			}
			if i%2 == 0 {
				if got["ct"] != "application/json" || got["body"] != fmt.Sprintf(`{"n":%d}`, i) {
					errs <- fmt.Errorf("call %d got %#v", i, got)
				}
			} else if !strings.HasPrefix(got["ct"], "multipart/form-data") {
				errs <- fmt.Errorf("call %d got content type %s", i, got["ct"])
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

type failingHTTPClient struct {
	t *testing.T
}

func (f failingHTTPClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	f.t.Fatalf("unexpected network call")
	return nil, nil
}

func (f failingHTTPClient) Do(context.Context, *httpclient.Request) (httpclient.Response, error) {
	f.t.Fatalf("unexpected network call")
	return nil, nil
}

type erroringHTTPClient struct {
	err error
}

func (e erroringHTTPClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, e.err
}

func (e erroringHTTPClient) Do(context.Context, *httpclient.Request) (httpclient.Response, error) {
	return nil, e.err
}
