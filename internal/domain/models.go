package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Domain contains typed views of the website API payloads.

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Website   string `json:"website,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	IsActive  *bool  `json:"is_active,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ArticleSummary is one entry of an article listing. Category is kept raw
// because the API returns either a name or a category object.
type ArticleSummary struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Excerpt       string          `json:"excerpt,omitempty"`
	FeaturedImage string          `json:"featured_image,omitempty"`
	Status        string          `json:"status,omitempty"`
	Views         int             `json:"views"`
	ReadTime      int             `json:"read_time"`
	PublishedAt   string          `json:"published_at,omitempty"`
	Category      json.RawMessage `json:"category,omitempty"`
	Author        *User           `json:"author,omitempty"`
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// ArticleList is the body of GET /articles.
type ArticleList struct {
	Articles   []ArticleSummary `json:"articles"`
	Pagination Pagination       `json:"pagination"`
}

// Comment is a comment or reply on an article.
type Comment struct {
	ID           int64  `json:"id"`
	Content      string `json:"content"`
	IsApproved   bool   `json:"is_approved"`
	CreatedAt    string `json:"created_at,omitempty"`
	User         *User  `json:"user,omitempty"`
	ArticleID    int64  `json:"article_id"`
	ParentID     *int64 `json:"parent_id,omitempty"`
	RepliesCount int    `json:"replies_count"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// DraftResult is the body of POST /articles/draft.
type DraftResult struct {
	Message   string `json:"message"`
	ArticleID int64  `json:"article_id"`
}

// PublishResult is the body of PUT /articles/{id}/publish.
type PublishResult struct {
	Message   string `json:"message"`
	ArticleID int64  `json:"article_id"`
	Slug      string `json:"slug"`
}

// Draft is an article being edited locally.
type Draft struct {
	Key       string    `json:"key"`
	ArticleID int64     `json:"article_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payload renders the draft as the body of POST /articles/draft.
func (d Draft) Payload() map[string]any {
	payload := map[string]any{
		"title":    d.Title,
		"content":  d.Content,
		"is_draft": true,
	}
	if d.Tags != "" {
		payload["tags"] = d.Tags
	}
	if d.ArticleID > 0 {
		payload["article_id"] = d.ArticleID
	}
	return payload
}

// NormalizeTags trims, drops empties and duplicates (case-insensitive,
// first spelling wins) and joins the result with commas.
func NormalizeTags(raw ...string) string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(raw))
	for _, chunk := range raw {
		for _, tag := range strings.Split(chunk, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tag)
		}
	}
	return strings.Join(out, ",")
}
