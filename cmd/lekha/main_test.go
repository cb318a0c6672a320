package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Adda-Baaj/lekha/internal/config"
)

type hit struct {
	method string
	uri    string
	body   string
}

func newTestCLI(t *testing.T, handler http.HandlerFunc) (*cli, *[]hit) {
	t.Helper()
	var hits []hit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		hits = append(hits, hit{method: r.Method, uri: r.URL.RequestURI(), body: string(raw)})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		SiteURL:       srv.URL,
		StoreType:     "none",
		AutosaveDelay: time.Second,
	}
	return &cli{cfg: cfg}, &hits
}

func execute(t *testing.T, c *cli, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func okJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	}
}

func TestArticlesListBuildsQuery(t *testing.T) {
	c, hits := newTestCLI(t, okJSON(`{"articles":[],"pagination":{"page":2}}`))

	out, err := execute(t, c, "articles", "list", "--page", "2", "--tag", "go")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(*hits) != 1 || (*hits)[0].uri != "/api/articles?page=2&tag=go" {
		t.Fatalf("unexpected requests %#v", *hits)
	}
	if !strings.Contains(out, `"page": 2`) {
		t.Fatalf("expected indented JSON output, got %q", out)
	}
}

func TestAdminSettingsSendsKeyValues(t *testing.T) {
	c, hits := newTestCLI(t, okJSON(`{"message":"Settings updated"}`))

	if _, err := execute(t, c, "admin", "settings", "site_name=My Blog", "comments_enabled=false"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	h := (*hits)[0]
	if h.method != http.MethodPut || h.uri != "/api/admin/settings" {
		t.Fatalf("unexpected request %#v", h)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(h.body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["site_name"] != "My Blog" || body["comments_enabled"] != "false" {
		t.Fatalf("unexpected body %#v", body)
	}
}

func TestDraftSaveReportsArticleID(t *testing.T) {
	c, hits := newTestCLI(t, okJSON(`{"message":"Draft saved","article_id":12}`))
	path := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(path, []byte("# Title\n\nBody"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, c, "draft", "save", path, "--tags", "Go, go ,cli")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "article 12") {
		t.Fatalf("unexpected output %q", out)
	}
	h := (*hits)[0]
	if h.method != http.MethodPost || h.uri != "/api/articles/draft" {
		t.Fatalf("unexpected request %#v", h)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(h.body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["title"] != "Title" || body["content"] != "Body" || body["is_draft"] != true {
		t.Fatalf("unexpected draft body %#v", body)
	}
}

func TestCommandSurfacesAPIErrorMessage(t *testing.T) {
	c, _ := newTestCLI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Article not found"}`))
	})

	_, err := execute(t, c, "articles", "get", "missing")
	if err == nil || err.Error() != "Article not found" {
		t.Fatalf("expected API error message, got %v", err)
	}
}

func TestParseIDAndKeyValues(t *testing.T) {
	if _, err := parseID("0"); err == nil {
		t.Fatalf("expected error for zero id")
	}
	if id, err := parseID(" 42 "); err != nil || id != 42 {
		t.Fatalf("parseID = %d, %v", id, err)
	}
	if _, err := keyValues([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
	p, err := keyValues([]string{"a=1", "b=x=y"})
	if err != nil || len(p) != 2 || p[1].Value != "x=y" {
		t.Fatalf("keyValues = %#v, %v", p, err)
	}
}
