package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/lekha/internal/autosave"
	"github.com/Adda-Baaj/lekha/internal/config"
	"github.com/Adda-Baaj/lekha/internal/domain"
	"github.com/Adda-Baaj/lekha/internal/logger"
	"github.com/Adda-Baaj/lekha/internal/storage"
	"github.com/Adda-Baaj/lekha/internal/validate"
	"github.com/Adda-Baaj/lekha/pkg/apiclient"
	"github.com/Adda-Baaj/lekha/pkg/httpclient"
	"github.com/Adda-Baaj/lekha/pkg/pagemeta"
	"github.com/Adda-Baaj/lekha/pkg/publishers"
)

const closeFlushTimeout = 15 * time.Second

// tokenSetter is implemented by transports that can switch bearer tokens.
type tokenSetter interface {
	SetAuthToken(token string)
}

// Option overrides a dependency of the Session.
type Option func(*Session)

// WithHTTPClient replaces the resty transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(s *Session) { s.http = hc }
}

// WithStore replaces the configured store.
func WithStore(st storage.Store) Option {
	return func(s *Session) { s.store = st }
}

// WithPublishers replaces the publishers loaded from publishers_file.
func WithPublishers(pubs ...publishers.Publisher) Option {
	return func(s *Session) { s.fanout = publishers.NewFanout(pubs) }
}

// WithAutosaveStatus registers a handler for autosave status events.
func WithAutosaveStatus(fn func(autosave.Event)) Option {
	return func(s *Session) { s.onStatus = fn }
}

// Session wires the API client together with local state and publish
// notifications for one user of the website.
type Session struct {
	cfg       *config.Config
	log       logger.Logger
	http      httpclient.Client
	store     storage.Store
	api       *apiclient.Client
	autosaver *autosave.Autosaver
	fanout    *publishers.Fanout
	onStatus  func(autosave.Event)
}

// NewSession builds a session from configuration. It restores a stored login
// and scrapes the CSRF token when csrf_page_path is set.
func NewSession(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	s := &Session{cfg: cfg, log: log}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.store == nil {
		st, err := storage.NewStore(cfg.StoreType, cfg.BBoltPath, storage.Options{
			DraftTTL:        cfg.DraftTTL,
			CleanupInterval: cfg.StoreCleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		s.store = st
	}

	if s.http == nil {
		var topts []httpclient.Option
		if logger.S != nil {
			topts = append(topts, httpclient.WithLogger(logger.S))
		}
		s.http = httpclient.NewRestyClient(cfg.RequestTimeout, topts...)
	}

	token, err := s.store.Session()
	if err != nil {
		s.store.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	s.setToken(token)

	csrf := cfg.CSRFToken
	if csrf == "" {
		if pageURL := cfg.CSRFPageURL(); pageURL != "" {
			csrf, err = pagemeta.CSRFToken(ctx, s.http, pageURL)
			if err != nil {
				log.WarnObj("csrf token discovery failed", "csrf_error", map[string]any{
					"page":  pageURL,
					"error": err.Error(),
				})
			}
		}
	}

	s.api, err = apiclient.New(apiclient.Config{
		SiteURL:   cfg.SiteURL,
		CSRFToken: csrf,
		Timeout:   cfg.RequestTimeout,
	}, apiclient.WithHTTPClient(s.http), apiclient.WithLogger(log))
	if err != nil {
		s.store.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	s.autosaver = autosave.New(s.api, s.store,
		autosave.WithDelay(cfg.AutosaveDelay),
		autosave.WithLogger(log),
		autosave.WithStatusHandler(s.onStatus),
	)

	if s.fanout == nil {
		fanout, err := loadFanout(ctx, cfg.PublishersFile, log)
		if err != nil {
			s.store.Close()
			return nil, err
		}
		s.fanout = fanout
	}

	log.DebugObj("session ready", "session", map[string]any{
		"site_url":         cfg.SiteURL,
		"signed_in":        token != "",
		"csrf":             csrf != "",
		"publishers_count": s.fanout.Size(),
	})
	return s, nil
}

func loadFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	log.InfoObj("publishers registry loaded", "publishers", enabled)
	return publishers.NewFanout(pubClients), nil
}

// API exposes the underlying client for direct endpoint calls.
func (s *Session) API() *apiclient.Client { return s.api }

// Autosaver returns the draft autosaver bound to this session.
func (s *Session) Autosaver() *autosave.Autosaver { return s.autosaver }

// Store returns the local store.
func (s *Session) Store() storage.Store { return s.store }

func (s *Session) setToken(token string) {
	if ts, ok := s.http.(tokenSetter); ok {
		ts.SetAuthToken(token)
	}
}

// Login authenticates and remembers the returned token for later runs.
func (s *Session) Login(ctx context.Context, email, password string, remember bool) (domain.AuthResult, error) {
	if err := validate.Struct(apiclient.Credentials{Email: email, Password: password, Remember: remember}); err != nil {
		return domain.AuthResult{}, err
	}

	res, err := s.api.Login(ctx, email, password, remember)
	if err != nil {
		return domain.AuthResult{}, err
	}
	out, err := apiclient.Decode[domain.AuthResult](res)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("decode login response: %w", err)
	}

	if out.Token != "" {
		if err := s.store.SaveSession(out.Token); err != nil {
			return out, fmt.Errorf("save session: %w", err)
		}
		s.setToken(out.Token)
	}
	s.log.InfoObj("signed in", "user", map[string]any{"id": out.User.ID, "email": out.User.Email})
	return out, nil
}

// Logout ends the remote session and forgets the local token even when the
// remote call fails.
func (s *Session) Logout(ctx context.Context) error {
	_, apiErr := s.api.Logout(ctx)
	s.setToken("")
	if err := s.store.ClearSession(); err != nil {
		return errors.Join(apiErr, fmt.Errorf("clear session: %w", err))
	}
	return apiErr
}

// Register validates and submits a sign-up.
func (s *Session) Register(ctx context.Context, reg apiclient.Registration) (apiclient.Result, error) {
	if err := validate.Struct(reg); err != nil {
		return nil, err
	}
	return s.api.Register(ctx, reg)
}

// ResetPassword validates and completes a password reset.
func (s *Session) ResetPassword(ctx context.Context, token, password, confirmation string) (apiclient.Result, error) {
	if err := validate.Struct(apiclient.PasswordReset{
		Token:                token,
		Password:             password,
		PasswordConfirmation: confirmation,
	}); err != nil {
		return nil, err
	}
	return s.api.ResetPassword(ctx, token, password, confirmation)
}

// ChangePassword validates and updates the signed-in user's password.
func (s *Session) ChangePassword(ctx context.Context, current, password, confirmation string) (apiclient.Result, error) {
	if err := validate.Struct(apiclient.PasswordChange{
		CurrentPassword:      current,
		Password:             password,
		PasswordConfirmation: confirmation,
	}); err != nil {
		return nil, err
	}
	return s.api.UpdatePassword(ctx, current, password, confirmation)
}

// Publish publishes the draft and notifies the configured sinks. Sink
// failures are logged, never returned.
func (s *Session) Publish(ctx context.Context, id int64, title string) (domain.PublishResult, error) {
	res, err := s.api.PublishDraft(ctx, id)
	if err != nil {
		return domain.PublishResult{}, err
	}
	out, err := apiclient.Decode[domain.PublishResult](res)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("decode publish response: %w", err)
	}
	if out.ArticleID == 0 {
		out.ArticleID = id
	}

	s.notify(ctx, publishers.NewEvent(publishers.EventArticlePublished, s.cfg.SiteURL, out.ArticleID, out.Slug, title))
	return out, nil
}

// DeleteArticle deletes an article and notifies the configured sinks.
func (s *Session) DeleteArticle(ctx context.Context, id int64) (apiclient.Result, error) {
	res, err := s.api.DeleteArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, publishers.NewEvent(publishers.EventArticleDeleted, s.cfg.SiteURL, id, "", ""))
	return res, nil
}

func (s *Session) notify(ctx context.Context, evt publishers.Event) {
	if s.fanout.Size() == 0 {
		return
	}
	delivered, err := s.fanout.Publish(ctx, evt)
	if err != nil {
		s.log.ErrorObj("publish notification failed", "notify_error", map[string]any{
			"event":     evt.Type,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	s.log.InfoObj("publish notification delivered", "notify", map[string]any{
		"event":     evt.Type,
		"delivered": delivered,
	})
}

// Close flushes pending drafts and releases resources. The flush ignores
// cancellation of ctx, which is usually the interrupted command context, and
// is bounded by closeFlushTimeout instead.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if s.autosaver != nil && s.autosaver.Pending() > 0 {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeFlushTimeout)
		if err := s.autosaver.Flush(flushCtx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	if err := s.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
