package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newWebhook(t *testing.T, url string, headers map[string]string) Publisher {
	t.Helper()
	cfg := sanitizePublisherConfig(PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: url, Headers: headers, TimeoutSeconds: 2},
	})
	pub, err := newHTTPPublisher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}
	return pub
}

func TestWebhookDeliversEventJSON(t *testing.T) {
	var (
		got     Event
		headers http.Header
		method  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub := newWebhook(t, srv.URL, map[string]string{"X-Token": "s3cret", EventHeader: "spoofed"})
	occurred := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	evt := Event{
		Type:       EventArticlePublished,
		ArticleID:  42,
		Slug:       "go-generics",
		Title:      "Go generics",
		SiteURL:    "https://blog.example.com",
		OccurredAt: occurred,
	}
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if method != http.MethodPost {
		t.Fatalf("expected default POST, got %s", method)
	}
	if headers.Get("X-Token") != "s3cret" || headers.Get(EventHeader) != EventArticlePublished {
		t.Fatalf("unexpected headers %v", headers)
	}
	if got.Type != EventArticlePublished || got.ArticleID != 42 || got.Slug != "go-generics" ||
		got.SiteURL != "https://blog.example.com" || !got.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected event payload %#v", got)
	}
}

func TestWebhookReportsStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slug rejected", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := newWebhook(t, srv.URL, nil).Publish(context.Background(), Event{Type: EventArticleDeleted, ArticleID: 3})
	if err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), "slug rejected") {
		t.Fatalf("error should carry status and body, got %v", err)
	}
}

func TestNewHTTPPublisherRequiresConfig(t *testing.T) {
	if _, err := newHTTPPublisher(context.Background(), PublisherConfig{ID: "hook", Type: TypeHTTP}, nil); err == nil {
		t.Fatalf("expected error without http block")
	}
}
