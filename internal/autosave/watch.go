package autosave

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adda-Baaj/lekha/internal/domain"
	"github.com/fsnotify/fsnotify"
)

// ParseMarkdown turns a markdown file into a draft. A leading "# " line
// becomes the title; the remainder is the content.
func ParseMarkdown(key string, raw []byte) domain.Draft {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	d := domain.Draft{Key: key}

	first, rest, _ := strings.Cut(text, "\n")
	if title, ok := strings.CutPrefix(strings.TrimSpace(first), "# "); ok {
		d.Title = strings.TrimSpace(title)
		d.Content = strings.TrimLeft(rest, "\n")
		return d
	}
	d.Content = text
	return d
}

// WatchFile touches a draft every time path is written. tags are attached to
// every version. It blocks until ctx is done or the watcher fails.
func (a *Autosaver) WatchFile(ctx context.Context, path string, tags string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	touch := func() {
		raw, err := os.ReadFile(abs)
		if err != nil {
			a.log.WarnObj("failed to read watched draft", "autosave_warning", map[string]any{
				"path":  abs,
				"error": err.Error(),
			})
			return
		}
		d := ParseMarkdown(abs, raw)
		d.Tags = tags
		if err := a.Touch(d); err != nil {
			a.log.ErrorObj("failed to record draft edit", "autosave_error", map[string]any{
				"path":  abs,
				"error": err.Error(),
			})
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				touch()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", abs, err)
		}
	}
}
