package publishers

import "time"

// Event types emitted by the client.
const (
	EventArticlePublished = "article.published"
	EventArticleDeleted   = "article.deleted"
)

// Event describes something that happened to site content.
type Event struct {
	Type       string    `json:"type"`
	ArticleID  int64     `json:"article_id"`
	Slug       string    `json:"slug,omitempty"`
	Title      string    `json:"title,omitempty"`
	SiteURL    string    `json:"site_url"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(typ, siteURL string, articleID int64, slug, title string) Event {
	return Event{
		Type:       typ,
		ArticleID:  articleID,
		Slug:       slug,
		Title:      title,
		SiteURL:    siteURL,
		OccurredAt: time.Now().UTC(),
	}
}

// ArticleURL returns the public URL of the article, or "" without a slug.
func (e Event) ArticleURL() string {
	if e.Slug == "" || e.SiteURL == "" {
		return ""
	}
	return e.SiteURL + "/articles/" + e.Slug
}
