package apiclient

import (
	"context"
	"net/url"
	"strconv"
)

type commentBody struct {
	Content string `json:"content"`
}

// Comments lists comments on an article.
func (c *Client) Comments(ctx context.Context, articleSlug string) (Result, error) {
	return c.Get(ctx, "/articles/"+url.PathEscape(articleSlug)+"/comments")
}

// AddComment comments on an article.
func (c *Client) AddComment(ctx context.Context, articleSlug, content string) (Result, error) {
	return c.Post(ctx, "/articles/"+url.PathEscape(articleSlug)+"/comments", commentBody{Content: content})
}

// UpdateComment edits a comment.
func (c *Client) UpdateComment(ctx context.Context, id int64, content string) (Result, error) {
	return c.Put(ctx, "/comments/"+strconv.FormatInt(id, 10), commentBody{Content: content})
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id int64) (Result, error) {
	return c.Delete(ctx, "/comments/"+strconv.FormatInt(id, 10))
}

// ReplyToComment answers an existing comment.
func (c *Client) ReplyToComment(ctx context.Context, commentID int64, content string) (Result, error) {
	return c.Post(ctx, "/comments/"+strconv.FormatInt(commentID, 10)+"/reply", commentBody{Content: content})
}
