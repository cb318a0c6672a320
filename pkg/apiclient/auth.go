package apiclient

import "context"

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name                 string `json:"name" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email,max=100"`
	Password             string `json:"password" validate:"required,password"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// PasswordReset is the payload for completing a password reset.
type PasswordReset struct {
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,password"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// Login authenticates a user.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (Result, error) {
	return c.Post(ctx, "/auth/login", Credentials{Email: email, Password: password, Remember: remember})
}

// Register creates an account. userData is any JSON-serializable payload,
// typically a Registration.
func (c *Client) Register(ctx context.Context, userData any) (Result, error) {
	return c.Post(ctx, "/auth/register", userData)
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) (Result, error) {
	return c.Post(ctx, "/auth/logout", nil)
}

// ForgotPassword requests a password reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (Result, error) {
	return c.Post(ctx, "/auth/forgot-password", map[string]string{"email": email})
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password, passwordConfirmation string) (Result, error) {
	return c.Post(ctx, "/auth/reset-password", PasswordReset{
		Token:                token,
		Password:             password,
		PasswordConfirmation: passwordConfirmation,
	})
}
