package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/lekha/internal/app"
	"github.com/Adda-Baaj/lekha/internal/config"
	"github.com/Adda-Baaj/lekha/internal/logger"
	"github.com/Adda-Baaj/lekha/pkg/apiclient"
)

// cli carries state shared by every command. The session is opened on first use.
type cli struct {
	cfg     *config.Config
	log     logger.Logger
	opts    []app.Option
	session *app.Session
}

func (c *cli) open(cmd *cobra.Command) (*app.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	s, err := app.NewSession(cmd.Context(), c.cfg, c.log, c.opts...)
	if err != nil {
		return nil, err
	}
	c.session = s
	return s, nil
}

func (c *cli) close(ctx context.Context) error {
	if c.session == nil {
		return nil
	}
	err := c.session.Close(ctx)
	c.session = nil
	return err
}

// call opens the session and prints the JSON result of fn.
func (c *cli) call(fn func(ctx context.Context, s *app.Session) (apiclient.Result, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		s, err := c.open(cmd)
		if err != nil {
			return err
		}
		res, err := fn(cmd.Context(), s)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "lekha",
		Short: "Command line client for the personal website API",
		Long: `lekha talks to the website's JSON API: sign in, browse and write
articles, autosave drafts from a local markdown file, moderate comments
and run admin tasks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.close(cmd.Context())
		},
	}

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newRegisterCmd(c),
		newForgotPasswordCmd(c),
		newResetPasswordCmd(c),
		newPasswordCmd(c),
		newArticlesCmd(c),
		newDraftCmd(c),
		newUploadCmd(c),
		newCommentsCmd(c),
		newAdminCmd(c),
		newSiteCmd(c),
	)
	return root
}

func printJSON(cmd *cobra.Command, res apiclient.Result) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, res, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// openFile returns an upload File for path. The caller closes the returned file.
func openFile(path string) (apiclient.File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return apiclient.File{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return apiclient.File{Name: filepath.Base(path), ContentType: ct, Reader: f}, f, nil
}

// keyValues parses key=value arguments into an ordered Params.
func keyValues(args []string) (apiclient.Params, error) {
	var p apiclient.Params
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		p = p.Add(strings.TrimSpace(k), v)
	}
	return p, nil
}

// asMap converts ordered params into a JSON object body.
func asMap(p apiclient.Params) map[string]any {
	out := make(map[string]any, len(p))
	for _, kv := range p {
		out[kv.Key] = kv.Value
	}
	return out
}
