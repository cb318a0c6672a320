package apiclient

import "context"

// Categories lists article categories.
func (c *Client) Categories(ctx context.Context) (Result, error) {
	return c.Get(ctx, "/categories")
}

// Tags lists article tags.
func (c *Client) Tags(ctx context.Context) (Result, error) {
	return c.Get(ctx, "/tags")
}

// Settings fetches the public site settings.
func (c *Client) Settings(ctx context.Context) (Result, error) {
	return c.Get(ctx, "/settings")
}
