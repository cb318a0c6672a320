// Package storage keeps client-side state: locally cached drafts awaiting
// autosave and the bearer token of the current session.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/lekha/internal/domain"
)

// Store persists drafts and the session token.
type Store interface {
	Close() error
	SaveDraft(d domain.Draft) error
	LoadDraft(key string) (domain.Draft, bool, error)
	DeleteDraft(key string) error
	Drafts() ([]domain.Draft, error)
	SaveSession(token string) error
	Session() (string, error)
	ClearSession() error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	DraftTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultDraftTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.DraftTTL <= 0 {
		opts.DraftTTL = defaultDraftTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                 { return nil }
func (noopStore) SaveDraft(domain.Draft) error                 { return nil }
func (noopStore) LoadDraft(string) (domain.Draft, bool, error) { return domain.Draft{}, false, nil }
func (noopStore) DeleteDraft(string) error                     { return nil }
func (noopStore) Drafts() ([]domain.Draft, error)              { return nil, nil }
func (noopStore) SaveSession(string) error                     { return nil }
func (noopStore) Session() (string, error)                     { return "", nil }
func (noopStore) ClearSession() error                          { return nil }
