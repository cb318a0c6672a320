// Package pagemeta reads metadata embedded in the website's HTML pages,
// notably the anti-forgery token published as <meta name="csrf-token">.
package pagemeta

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/lekha/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
)

// Meta holds the page metadata the client cares about.
type Meta struct {
	CSRFToken   string
	Title       string
	Description string
	ImageURL    string
}

// Fetch downloads pageURL and parses its metadata.
func Fetch(ctx context.Context, client httpclient.Client, pageURL string, headers map[string]string) (Meta, error) {
	if client == nil {
		return Meta{}, fmt.Errorf("http client is nil")
	}
	resp, err := client.Get(ctx, pageURL, headers)
	if err != nil {
		return Meta{}, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return Meta{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return Parse(body)
}

// CSRFToken fetches pageURL and returns its csrf-token meta value, or "" if
// the page has none.
func CSRFToken(ctx context.Context, client httpclient.Client, pageURL string) (string, error) {
	meta, err := Fetch(ctx, client, pageURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return "", err
	}
	return meta.CSRFToken, nil
}

// Parse extracts metadata from an HTML document.
func Parse(body []byte) (Meta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Meta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return Meta{
		CSRFToken: extract(`meta[name="csrf-token"]`),
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: extract(`meta[property="og:image"]`),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
