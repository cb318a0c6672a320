package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/lekha/internal/app"
	"github.com/Adda-Baaj/lekha/pkg/apiclient"
)

const passwordEnv = "LEKHA_PASSWORD"

func passwordFlag(cmd *cobra.Command, name string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return os.Getenv(passwordEnv)
}

func newLoginCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")
			remember, _ := cmd.Flags().GetBool("remember")
			out, err := s.Login(cmd.Context(), email, passwordFlag(cmd, "password"), remember)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s <%s>\n", out.User.Name, out.User.Email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (or "+passwordEnv+")")
	cmd.Flags().Bool("remember", false, "ask the site for a long-lived session")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			if err := s.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
			return s.API().CurrentUser(ctx)
		}),
	}
}

func newRegisterCmd(c *cli) *cobra.Command {
	var reg apiclient.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg.Password = passwordFlag(cmd, "password")
			if reg.PasswordConfirmation == "" {
				reg.PasswordConfirmation = reg.Password
			}
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.Register(ctx, reg)
			})(cmd, args)
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "display name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().String("password", "", "password (or "+passwordEnv+")")
	cmd.Flags().StringVar(&reg.PasswordConfirmation, "confirm", "", "password confirmation (defaults to --password)")
	return cmd
}

func newForgotPasswordCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().ForgotPassword(ctx, args[0])
			})(cmd, args)
		},
	}
}

func newResetPasswordCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _ := cmd.Flags().GetString("token")
			password := passwordFlag(cmd, "password")
			confirm, _ := cmd.Flags().GetString("confirm")
			if confirm == "" {
				confirm = password
			}
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.ResetPassword(ctx, token, password, confirm)
			})(cmd, args)
		},
	}
	cmd.Flags().String("token", "", "reset token from the email")
	cmd.Flags().String("password", "", "new password (or "+passwordEnv+")")
	cmd.Flags().String("confirm", "", "password confirmation (defaults to --password)")
	return cmd
}

func newPasswordCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the signed-in user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, _ := cmd.Flags().GetString("current")
			password := passwordFlag(cmd, "new")
			confirm, _ := cmd.Flags().GetString("confirm")
			if confirm == "" {
				confirm = password
			}
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.ChangePassword(ctx, current, password, confirm)
			})(cmd, args)
		},
	}
	cmd.Flags().String("current", "", "current password")
	cmd.Flags().String("new", "", "new password (or "+passwordEnv+")")
	cmd.Flags().String("confirm", "", "password confirmation (defaults to --new)")
	return cmd
}
