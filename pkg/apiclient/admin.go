package apiclient

import (
	"context"
	"strconv"
)

func adminUserPath(id int64) string {
	return "/admin/users/" + strconv.FormatInt(id, 10)
}

// Users lists accounts (admin only).
func (c *Client) Users(ctx context.Context, filters Params) (Result, error) {
	return c.Get(ctx, withQuery("/admin/users", filters))
}

// User fetches one account (admin only).
func (c *Client) User(ctx context.Context, id int64) (Result, error) {
	return c.Get(ctx, adminUserPath(id))
}

// UpdateUser edits an account (admin only).
func (c *Client) UpdateUser(ctx context.Context, id int64, userData any) (Result, error) {
	return c.Put(ctx, adminUserPath(id), userData)
}

// DeleteUser removes an account (admin only).
func (c *Client) DeleteUser(ctx context.Context, id int64) (Result, error) {
	return c.Delete(ctx, adminUserPath(id))
}

// UpdateUserRole changes an account's role (admin only).
func (c *Client) UpdateUserRole(ctx context.Context, id int64, role string) (Result, error) {
	return c.Put(ctx, adminUserPath(id)+"/role", map[string]string{"role": role})
}

// UpdateSettings replaces site settings (admin only).
func (c *Client) UpdateSettings(ctx context.Context, settings any) (Result, error) {
	return c.Put(ctx, "/admin/settings", settings)
}

// Statistics fetches site statistics (admin only).
func (c *Client) Statistics(ctx context.Context) (Result, error) {
	return c.Get(ctx, "/admin/statistics")
}
