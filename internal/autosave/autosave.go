// Package autosave debounces draft edits and pushes them to the website once
// the author stops typing.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Adda-Baaj/lekha/internal/domain"
	"github.com/Adda-Baaj/lekha/internal/logger"
	"github.com/Adda-Baaj/lekha/pkg/apiclient"
)

// DefaultDelay is the quiet period after the last edit before a save fires.
const DefaultDelay = 2 * time.Second

// ErrMissingKey is returned when a draft has no local key.
var ErrMissingKey = errors.New("draft key is required")

// Status describes the state of an autosave attempt.
type Status string

const (
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusFailed Status = "failed"
)

// Event is delivered to the status handler on every transition.
type Event struct {
	Status    Status
	Key       string
	ArticleID int64
	Err       error
}

// Saver is the remote side of an autosave.
type Saver interface {
	SaveDraft(ctx context.Context, articleData any) (apiclient.Result, error)
}

// DraftStore keeps the local copy of a draft until the remote save succeeds.
type DraftStore interface {
	SaveDraft(d domain.Draft) error
	DeleteDraft(key string) error
}

// Option customizes an Autosaver.
type Option func(*Autosaver)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(a *Autosaver) {
		if d > 0 {
			a.delay = d
		}
	}
}

// WithLogger sets the logger used for save failures.
func WithLogger(log logger.Logger) Option {
	return func(a *Autosaver) {
		if log != nil {
			a.log = log
		}
	}
}

// WithStatusHandler registers fn for status events. fn runs on the saving goroutine.
func WithStatusHandler(fn func(Event)) Option {
	return func(a *Autosaver) {
		a.onStatus = fn
	}
}

type pendingDraft struct {
	draft domain.Draft
	due   time.Time
}

// Autosaver collects edits per draft key and saves each one after DefaultDelay
// (or the configured delay) without further edits.
type Autosaver struct {
	saver    Saver
	store    DraftStore
	delay    time.Duration
	log      logger.Logger
	onStatus func(Event)
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]pendingDraft
	ids     map[string]int64
	wake    chan struct{}
}

// New builds an Autosaver. Run must be started for timed saves to happen.
func New(saver Saver, store DraftStore, opts ...Option) *Autosaver {
	a := &Autosaver{
		saver:   saver,
		store:   store,
		delay:   DefaultDelay,
		log:     logger.NopLogger{},
		now:     time.Now,
		pending: make(map[string]pendingDraft),
		ids:     make(map[string]int64),
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Touch records a new version of the draft, persists it locally and restarts
// its quiet period.
func (a *Autosaver) Touch(d domain.Draft) error {
	if d.Key == "" {
		return ErrMissingKey
	}
	now := a.now()
	d.UpdatedAt = now.UTC()

	a.mu.Lock()
	if d.ArticleID == 0 {
		d.ArticleID = a.ids[d.Key]
	}
	a.pending[d.Key] = pendingDraft{draft: d, due: now.Add(a.delay)}
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.SaveDraft(d); err != nil {
			return fmt.Errorf("store draft %q locally: %w", d.Key, err)
		}
	}

	select {
	case a.wake <- struct{}{}:
	default:
	}
	return nil
}

// ArticleID returns the server id learned for key, or 0.
func (a *Autosaver) ArticleID(key string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ids[key]
}

// Pending reports how many drafts are waiting for their quiet period to end.
func (a *Autosaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Run saves due drafts until ctx is done. Drafts still pending at that point
// stay in the local store.
func (a *Autosaver) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	stopTimer(timer)

	for {
		a.arm(timer)
		select {
		case <-ctx.Done():
			stopTimer(timer)
			return ctx.Err()
		case <-a.wake:
		case <-timer.C:
			a.saveDue(ctx)
		}
	}
}

// Flush saves every pending draft immediately.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	drafts := make([]domain.Draft, 0, len(a.pending))
	for key, p := range a.pending {
		drafts = append(drafts, p.draft)
		delete(a.pending, key)
	}
	a.mu.Unlock()

	var errs []error
	for _, d := range drafts {
		if err := a.save(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Autosaver) arm(timer *time.Timer) {
	stopTimer(timer)

	a.mu.Lock()
	var next time.Time
	for _, p := range a.pending {
		if next.IsZero() || p.due.Before(next) {
			next = p.due
		}
	}
	a.mu.Unlock()

	if next.IsZero() {
		return
	}
	wait := next.Sub(a.now())
	if wait < 0 {
		wait = 0
	}
	timer.Reset(wait)
}

func (a *Autosaver) saveDue(ctx context.Context) {
	now := a.now()

	a.mu.Lock()
	var due []domain.Draft
	for key, p := range a.pending {
		if !p.due.After(now) {
			due = append(due, p.draft)
			delete(a.pending, key)
		}
	}
	a.mu.Unlock()

	for _, d := range due {
		_ = a.save(ctx, d)
	}
}

func (a *Autosaver) save(ctx context.Context, d domain.Draft) error {
	a.emit(Event{Status: StatusSaving, Key: d.Key, ArticleID: d.ArticleID})

	res, err := a.saver.SaveDraft(ctx, d.Payload())
	if err == nil {
		var out domain.DraftResult
		if err = res.Decode(&out); err == nil && out.ArticleID > 0 {
			d.ArticleID = out.ArticleID
		}
	}
	if err != nil {
		a.log.ErrorObj("draft autosave failed", "autosave_error", map[string]any{
			"key":   d.Key,
			"error": err.Error(),
		})
		a.emit(Event{Status: StatusFailed, Key: d.Key, ArticleID: d.ArticleID, Err: err})
		return fmt.Errorf("autosave %q: %w", d.Key, err)
	}

	a.mu.Lock()
	if d.ArticleID > 0 {
		a.ids[d.Key] = d.ArticleID
	}
	if p, ok := a.pending[d.Key]; ok && p.draft.ArticleID == 0 {
		p.draft.ArticleID = d.ArticleID
		a.pending[d.Key] = p
	}
	_, newer := a.pending[d.Key]
	a.mu.Unlock()

	if !newer && a.store != nil {
		if err := a.store.DeleteDraft(d.Key); err != nil {
			a.log.WarnObj("failed to drop local draft copy", "autosave_warning", map[string]any{
				"key":   d.Key,
				"error": err.Error(),
			})
		}
	}

	a.log.InfoObj("draft saved", "autosave", map[string]any{
		"key":        d.Key,
		"article_id": d.ArticleID,
	})
	a.emit(Event{Status: StatusSaved, Key: d.Key, ArticleID: d.ArticleID})
	return nil
}

func (a *Autosaver) emit(ev Event) {
	if a.onStatus != nil {
		a.onStatus(ev)
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
