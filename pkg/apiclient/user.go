package apiclient

import "context"

// PasswordChange is the payload for updating the current user's password.
type PasswordChange struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,password"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// CurrentUser fetches the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (Result, error) {
	return c.Get(ctx, "/user")
}

// UpdateProfile updates the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, userData any) (Result, error) {
	return c.Put(ctx, "/user/profile", userData)
}

// UpdatePassword changes the signed-in user's password.
func (c *Client) UpdatePassword(ctx context.Context, currentPassword, newPassword, newPasswordConfirmation string) (Result, error) {
	return c.Put(ctx, "/user/password", PasswordChange{
		CurrentPassword:      currentPassword,
		Password:             newPassword,
		PasswordConfirmation: newPasswordConfirmation,
	})
}

// UploadAvatar uploads a new avatar image.
func (c *Client) UploadAvatar(ctx context.Context, avatar File) (Result, error) {
	return c.UploadFile(ctx, "/user/avatar", avatar, nil)
}
