package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/lekha/internal/app"
	"github.com/Adda-Baaj/lekha/pkg/apiclient"
)

func newSiteCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Read public site data",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "categories",
			Short: "List categories",
			Args:  cobra.NoArgs,
			RunE: c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().Categories(ctx)
			}),
		},
		&cobra.Command{
			Use:   "tags",
			Short: "List tags",
			Args:  cobra.NoArgs,
			RunE: c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().Tags(ctx)
			}),
		},
		&cobra.Command{
			Use:   "settings",
			Short: "Show public site settings",
			Args:  cobra.NoArgs,
			RunE: c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().Settings(ctx)
			}),
		},
	)
	return cmd
}
