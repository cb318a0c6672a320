package apiclient

import (
	"context"
	"net/url"
	"strconv"
)

// Articles lists articles; only truthy filters make it into the query string.
func (c *Client) Articles(ctx context.Context, filters Params) (Result, error) {
	return c.Get(ctx, withQuery("/articles", filters))
}

// Article fetches a single article by slug.
func (c *Client) Article(ctx context.Context, slug string) (Result, error) {
	return c.Get(ctx, "/articles/"+url.PathEscape(slug))
}

// CreateArticle creates an article.
func (c *Client) CreateArticle(ctx context.Context, articleData any) (Result, error) {
	return c.Post(ctx, "/articles", articleData)
}

// UpdateArticle updates the article with the given id.
func (c *Client) UpdateArticle(ctx context.Context, id int64, articleData any) (Result, error) {
	return c.Put(ctx, "/articles/"+strconv.FormatInt(id, 10), articleData)
}

// DeleteArticle deletes the article with the given id.
func (c *Client) DeleteArticle(ctx context.Context, id int64) (Result, error) {
	return c.Delete(ctx, "/articles/"+strconv.FormatInt(id, 10))
}

// SaveDraft creates or updates a draft.
func (c *Client) SaveDraft(ctx context.Context, articleData any) (Result, error) {
	return c.Post(ctx, "/articles/draft", articleData)
}

// PublishDraft publishes the draft with the given id.
func (c *Client) PublishDraft(ctx context.Context, id int64) (Result, error) {
	return c.Put(ctx, "/articles/"+strconv.FormatInt(id, 10)+"/publish", nil)
}

// UploadArticleImage uploads a featured image.
func (c *Client) UploadArticleImage(ctx context.Context, image File) (Result, error) {
	return c.UploadFile(ctx, "/articles/image", image, nil)
}
