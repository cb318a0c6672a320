package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestEndpointMappings(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL, Config{})
	ctx := context.Background()

	cases := []struct {
		name   string
		call   func() (Result, error)
		method string
		uri    string
		body   string
	}{
		{"login", func() (Result, error) { return c.Login(ctx, "a@b.co", "pw", true) }, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"pw","remember":true}`},
		{"register", func() (Result, error) { return c.Register(ctx, map[string]string{"name": "A"}) }, http.MethodPost, "/api/auth/register", `{"name":"A"}`},
		{"logout", func() (Result, error) { return c.Logout(ctx) }, http.MethodPost, "/api/auth/logout", ``},
		{"forgot", func() (Result, error) { return c.ForgotPassword(ctx, "a@b.co") }, http.MethodPost, "/api/auth/forgot-password", `{"email":"a@b.co"}`},
		{"reset", func() (Result, error) { return c.ResetPassword(ctx, "t", "p", "p") }, http.MethodPost, "/api/auth/reset-password", `{"token":"t","password":"p","password_confirmation":"p"}`},
		{"current user", func() (Result, error) { return c.CurrentUser(ctx) }, http.MethodGet, "/api/user", ``},
		{"profile", func() (Result, error) { return c.UpdateProfile(ctx, map[string]string{"bio": "x"}) }, http.MethodPut, "/api/user/profile", `{"bio":"x"}`},
		{"password", func() (Result, error) { return c.UpdatePassword(ctx, "old", "new", "new") }, http.MethodPut, "/api/user/password", `{"current_password":"old","password":"new","password_confirmation":"new"}`},
		{"articles", func() (Result, error) { return c.Articles(ctx, P("a", "1", "b", "", "c", "x")) }, http.MethodGet, "/api/articles?a=1&c=x", ``},
		{"articles no filters", func() (Result, error) { return c.Articles(ctx, nil) }, http.MethodGet, "/api/articles", ``},
		{"article", func() (Result, error) { return c.Article(ctx, "hello-world") }, http.MethodGet, "/api/articles/hello-world", ``},
		{"create article", func() (Result, error) { return c.CreateArticle(ctx, map[string]string{"title": "T"}) }, http.MethodPost, "/api/articles", `{"title":"T"}`},
		{"update article", func() (Result, error) { return c.UpdateArticle(ctx, 4, map[string]string{"title": "T"}) }, http.MethodPut, "/api/articles/4", `{"title":"T"}`},
		{"delete article", func() (Result, error) { return c.DeleteArticle(ctx, 4) }, http.MethodDelete, "/api/articles/4", ``},
		{"save draft", func() (Result, error) { return c.SaveDraft(ctx, map[string]any{"title": "T"}) }, http.MethodPost, "/api/articles/draft", `{"title":"T"}`},
		{"publish", func() (Result, error) { return c.PublishDraft(ctx, 9) }, http.MethodPut, "/api/articles/9/publish", ``},
		{"comments", func() (Result, error) { return c.Comments(ctx, "post") }, http.MethodGet, "/api/articles/post/comments", ``},
		{"add comment", func() (Result, error) { return c.AddComment(ctx, "post", "hi") }, http.MethodPost, "/api/articles/post/comments", `{"content":"hi"}`},
		{"update comment", func() (Result, error) { return c.UpdateComment(ctx, 3, "edit") }, http.MethodPut, "/api/comments/3", `{"content":"edit"}`},
		{"delete comment", func() (Result, error) { return c.DeleteComment(ctx, 3) }, http.MethodDelete, "/api/comments/3", ``},
		{"reply", func() (Result, error) { return c.ReplyToComment(ctx, 3, "re") }, http.MethodPost, "/api/comments/3/reply", `{"content":"re"}`},
		{"users", func() (Result, error) { return c.Users(ctx, P("role", "admin", "search", "")) }, http.MethodGet, "/api/admin/users?role=admin", ``},
		{"user", func() (Result, error) { return c.User(ctx, 2) }, http.MethodGet, "/api/admin/users/2", ``},
		{"update user", func() (Result, error) { return c.UpdateUser(ctx, 2, map[string]bool{"is_active": false}) }, http.MethodPut, "/api/admin/users/2", `{"is_active":false}`},
		{"delete user", func() (Result, error) { return c.DeleteUser(ctx, 2) }, http.MethodDelete, "/api/admin/users/2", ``},
		{"role", func() (Result, error) { return c.UpdateUserRole(ctx, 2, "contributor") }, http.MethodPut, "/api/admin/users/2/role", `{"role":"contributor"}`},
		{"settings update", func() (Result, error) { return c.UpdateSettings(ctx, map[string]string{"site_name": "S"}) }, http.MethodPut, "/api/admin/settings", `{"site_name":"S"}`},
		{"statistics", func() (Result, error) { return c.Statistics(ctx) }, http.MethodGet, "/api/admin/statistics", ``},
		{"categories", func() (Result, error) { return c.Categories(ctx) }, http.MethodGet, "/api/categories", ``},
		{"tags", func() (Result, error) { return c.Tags(ctx) }, http.MethodGet, "/api/tags", ``},
		{"settings", func() (Result, error) { return c.Settings(ctx) }, http.MethodGet, "/api/settings", ``},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.call(); err != nil {
				t.Fatalf("call: %v", err)
			}
			if rec.Method != tc.method || rec.URI != tc.uri {
				t.Fatalf("got %s %s, want %s %s", rec.Method, rec.URI, tc.method, tc.uri)
			}
			if tc.body == "" {
				if len(rec.Body) != 0 {
					t.Fatalf("expected no body, got %q", rec.Body)
				}
				return
			}
			if !jsonEqual(t, rec.Body, []byte(tc.body)) {
				t.Fatalf("body = %s, want %s", rec.Body, tc.body)
			}
		})
	}
}

func TestUploadAvatarUsesFileField(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"avatar":"/a.png"}`)
	c := newTestClient(t, srv.URL, Config{})

	res, err := c.UploadAvatar(context.Background(), File{Name: "me.png", Reader: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}
	if rec.URI != "/api/user/avatar" || len(rec.Files) != 1 || !strings.HasPrefix(rec.Files[0], "file:me.png") {
		t.Fatalf("unexpected upload %s %#v", rec.URI, rec.Files)
	}
	got, err := Decode[map[string]string](res)
	if err != nil || got["avatar"] != "/a.png" {
		t.Fatalf("unexpected result %#v err=%v", got, err)
	}
}

func jsonEqual(t *testing.T, a, b []byte) bool {
	t.Helper()
	var x, y any
	if err := json.Unmarshal(a, &x); err != nil {
		t.Fatalf("decode %q: %v", a, err)
	}
	if err := json.Unmarshal(b, &y); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
	xa, _ := json.Marshal(x)
	ya, _ := json.Marshal(y)
	return string(xa) == string(ya)
}
