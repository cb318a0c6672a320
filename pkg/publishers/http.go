package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/lekha/pkg/httpclient"
	"github.com/go-resty/resty/v2"
)

const (
	// EventHeader names the event type on webhook deliveries.
	EventHeader = "X-Lekha-Event"

	webhookSnippetBytes = 512
)

// webhookPublisher posts site events as JSON to an HTTP endpoint.
type webhookPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	return &webhookPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

// Publish delivers evt. Configured headers cannot override the content type
// or the event header.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeaders(w.headers).
		SetHeader("Content-Type", "application/json").
		SetHeader(EventHeader, evt.Type).
		SetBody(body).
		Execute(w.method, w.url)
	if err != nil {
		w.log.ErrorObj("webhook delivery failed", "publisher_http_error", map[string]any{
			"publisher_id": w.id,
			"event":        evt.Type,
			"error":        err.Error(),
		})
		return fmt.Errorf("deliver %s to %s: %w", evt.Type, w.url, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook %s answered %d: %s", w.url, resp.StatusCode(), snippet(resp.Body()))
	}

	w.log.DebugObj("webhook delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": w.id,
		"event":        evt.Type,
		"article_id":   evt.ArticleID,
		"status":       resp.StatusCode(),
	})
	return nil
}

func snippet(body []byte) string {
	if len(body) > webhookSnippetBytes {
		body = body[:webhookSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
