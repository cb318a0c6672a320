package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/lekha/internal/app"
	"github.com/Adda-Baaj/lekha/internal/autosave"
	"github.com/Adda-Baaj/lekha/internal/domain"
	"github.com/Adda-Baaj/lekha/pkg/apiclient"
)

func newArticlesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Browse and manage articles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			perPage, _ := cmd.Flags().GetInt("per-page")
			category, _ := cmd.Flags().GetString("category")
			tag, _ := cmd.Flags().GetString("tag")
			search, _ := cmd.Flags().GetString("search")
			status, _ := cmd.Flags().GetString("status")
			filters := apiclient.P(
				"page", page,
				"per_page", perPage,
				"category", category,
				"tag", tag,
				"search", search,
				"status", status,
			)
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().Articles(ctx, filters)
			})(cmd, args)
		},
	}
	list.Flags().Int("page", 0, "page number")
	list.Flags().Int("per-page", 0, "articles per page")
	list.Flags().String("category", "", "category slug")
	list.Flags().String("tag", "", "tag slug")
	list.Flags().String("search", "", "full text search")
	list.Flags().String("status", "", "published or draft")

	get := &cobra.Command{
		Use:   "get <slug>",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.API().Article(ctx, args[0])
			})(cmd, args)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
				return s.DeleteArticle(ctx, id)
			})(cmd, args)
		},
	}

	cmd.AddCommand(list, get, del)
	return cmd
}

func readDraft(path, tags string, id int64) (domain.Draft, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("read %s: %w", path, err)
	}
	d := autosave.ParseMarkdown(abs, raw)
	d.Tags = domain.NormalizeTags(tags)
	d.ArticleID = id
	return d, nil
}

func newDraftCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Write articles as drafts",
	}

	save := &cobra.Command{
		Use:   "save <file.md>",
		Short: "Save a markdown file as a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, _ := cmd.Flags().GetString("tags")
			id, _ := cmd.Flags().GetInt64("id")
			d, err := readDraft(args[0], tags, id)
			if err != nil {
				return err
			}
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			a := s.Autosaver()
			if err := a.Touch(d); err != nil {
				return err
			}
			if err := a.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "draft saved (article %d)\n", a.ArticleID(d.Key))
			return nil
		},
	}
	save.Flags().String("tags", "", "comma separated tags")
	save.Flags().Int64("id", 0, "existing article id to update")

	publish := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a draft and notify configured sinks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString("title")
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			out, err := s.Publish(cmd.Context(), id, title)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published article %d as %q\n", out.ArticleID, out.Slug)
			return nil
		},
	}
	publish.Flags().String("title", "", "title to include in notifications")

	watch := &cobra.Command{
		Use:   "watch <file.md>",
		Short: "Autosave a markdown file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, _ := cmd.Flags().GetString("tags")
			out := cmd.ErrOrStderr()
			c.opts = append(c.opts, app.WithAutosaveStatus(func(ev autosave.Event) {
				switch ev.Status {
				case autosave.StatusFailed:
					fmt.Fprintf(out, "%s %s: %v\n", time.Now().Format(time.TimeOnly), ev.Status, ev.Err)
				default:
					fmt.Fprintf(out, "%s %s (article %d)\n", time.Now().Format(time.TimeOnly), ev.Status, ev.ArticleID)
				}
			}))
			s, err := c.open(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a := s.Autosaver()
			go a.Run(ctx)
			fmt.Fprintf(out, "watching %s, press Ctrl+C to stop\n", args[0])
			if err := a.WatchFile(ctx, args[0], domain.NormalizeTags(tags)); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	watch.Flags().String("tags", "", "comma separated tags")

	local := &cobra.Command{
		Use:   "pending",
		Short: "List drafts kept locally because they have not reached the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			drafts, err := s.Store().Drafts()
			if err != nil {
				return err
			}
			for _, d := range drafts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d.UpdatedAt.Format(time.RFC3339), d.Title, d.Key)
			}
			return nil
		},
	}

	cmd.AddCommand(save, publish, watch, local)
	return cmd
}

func newUploadCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload images",
	}

	upload := func(use, short string, fn func(ctx context.Context, s *app.Session, f apiclient.File) (apiclient.Result, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				file, fh, err := openFile(args[0])
				if err != nil {
					return err
				}
				defer fh.Close()
				return c.call(func(ctx context.Context, s *app.Session) (apiclient.Result, error) {
					return fn(ctx, s, file)
				})(cmd, args)
			},
		}
	}

	cmd.AddCommand(
		upload("image <file>", "Upload an image for use in articles", func(ctx context.Context, s *app.Session, f apiclient.File) (apiclient.Result, error) {
			return s.API().UploadArticleImage(ctx, f)
		}),
		upload("avatar <file>", "Replace the signed-in user's avatar", func(ctx context.Context, s *app.Session, f apiclient.File) (apiclient.Result, error) {
			return s.API().UploadAvatar(ctx, f)
		}),
	)
	return cmd
}
