package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/lekha/internal/app"
	"github.com/Adda-Baaj/lekha/pkg/apiclient"
)

func newAdminCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer users and site settings",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			role, _ := cmd.Flags().GetString("role")
			search, _ := cmd.Flags().GetString("search")
			filters := apiclient.P("page", page, "role", role, "search", search)
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().Users(ctx, filters)
			})(cmd, args)
		},
	}
	users.Flags().Int("page", 0, "page number")
	users.Flags().String("role", "", "filter by role")
	users.Flags().String("search", "", "search name or email")

	byID := func(use, short string, nargs int, fn func(ctx context.Context, s *app.Session, id int64, args []string) (apiclient.Result, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(nargs),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
					return fn(ctx, s, id, args[1:])
				})(cmd, args)
			},
		}
	}

	user := byID("user <id>", "Show a user", 1, func(ctx context.Context, s *app.Session, id int64, _ []string) (apiclient.Result, error) {
		return s.API().User(ctx, id)
	})
	role := byID("role <id> <role>", "Change a user's role", 2, func(ctx context.Context, s *app.Session, id int64, rest []string) (apiclient.Result, error) {
		return s.API().UpdateUserRole(ctx, id, rest[0])
	})
	deleteUser := byID("delete-user <id>", "Delete a user", 1, func(ctx context.Context, s *app.Session, id int64, _ []string) (apiclient.Result, error) {
		return s.API().DeleteUser(ctx, id)
	})
	updateUser := &cobra.Command{
		Use:   "update-user <id> key=value...",
		Short: "Update fields of a user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fields, err := keyValues(args[1:])
			if err != nil {
				return err
			}
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().UpdateUser(ctx, id, asMap(fields))
			})(cmd, args)
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show site statistics",
		Args:  cobra.NoArgs,
		RunE: c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
			return s.API().Statistics(ctx)
		}),
	}

	settings := &cobra.Command{
		Use:   "settings key=value...",
		Short: "Update site settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := keyValues(args)
			if err != nil {
				return err
			}
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().UpdateSettings(ctx, asMap(fields))
			})(cmd, args)
		},
	}

	cmd.AddCommand(users, user, updateUser, role, deleteUser, stats, settings)
	return cmd
}
