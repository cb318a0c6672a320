package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/lekha/internal/app"
	"github.com/Adda-Baaj/lekha/pkg/apiclient"
)

func newCommentsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and write comments",
	}

	list := &cobra.Command{
		Use:   "list <article-slug>",
		Short: "List comments on an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().Comments(ctx, args[0])
			})(cmd, args)
		},
	}

	add := &cobra.Command{
		Use:   "add <article-slug> <text...>",
		Short: "Comment on an article",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().AddComment(ctx, args[0], strings.Join(args[1:], " "))
			})(cmd, args)
		},
	}

	withID := func(use, short string, fn func(ctx context.Context, s *app.Session, id int64, text string) (apiclient.Result, error), minArgs int) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.MinimumNArgs(minArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				text := strings.Join(args[1:], " ")
				return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
					return fn(ctx, s, id, text)
				})(cmd, args)
			},
		}
	}

	cmd.AddCommand(
		list,
		add,
		withID("reply <comment-id> <text...>", "Reply to a comment", func(ctx context.Context, s *app.Session, id int64, text string) (apiclient.Result, error) {
			return s.API().ReplyToComment(ctx, id, text)
		}, 2),
		withID("edit <comment-id> <text...>", "Edit a comment", func(ctx context.Context, s *app.Session, id int64, text string) (apiclient.Result, error) {
			return s.API().UpdateComment(ctx, id, text)
		}, 2),
		withID("delete <comment-id>", "Delete a comment", func(ctx context.Context, s *app.Session, id int64, _ string) (apiclient.Result, error) {
			return s.API().DeleteComment(ctx, id)
		}, 1),
	)
	return cmd
}
