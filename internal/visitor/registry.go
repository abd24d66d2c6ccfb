// Package visitor maps browsers to their apps. A browser is identified by an
// opaque token in the famdesk_visitor cookie; its app lives in memory while
// the browser is active and is rebuilt from the database after a restart or
// eviction.
package visitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/famdesk/internal/app"
	"github.com/dukerupert/famdesk/internal/store"
)

const CookieName = "famdesk_visitor"

const (
	defaultIdleTimeout = 24 * time.Hour
	defaultRetention   = 30 * 24 * time.Hour
)

type Config struct {
	APIURL     string
	APITimeout time.Duration
	// IdleTimeout is how long an unused app stays in memory.
	IdleTimeout time.Duration
	// Retention is how long an unused visitor and its cookies stay on disk.
	Retention time.Duration
	// OnCreate, when set, runs for every app the registry builds.
	OnCreate func(*app.App)
}

type Registry struct {
	mu       sync.Mutex
	apps     map[string]*app.App // by token
	visitors *store.VisitorStore
	cookies  *store.CookieStore
	cfg      Config
	logger   *slog.Logger
}

func NewRegistry(visitors *store.VisitorStore, cookies *store.CookieStore, cfg Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	return &Registry{
		apps:     make(map[string]*app.App),
		visitors: visitors,
		cookies:  cookies,
		cfg:      cfg,
		logger:   logger,
	}
}

// Resolve returns the app for token, creating a new visitor when the token
// is empty or unknown. The returned token is the one the browser should hold
// from now on. path is the page being requested; a new app starts there.
func (r *Registry) Resolve(ctx context.Context, token, path string) (*app.App, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token != "" {
		if a, ok := r.apps[token]; ok {
			a.Touch()
			return a, token, nil
		}
	}

	var visitorID string
	if token != "" {
		v, err := r.visitors.GetByToken(token)
		if err != nil {
			return nil, "", fmt.Errorf("resolve visitor: %w", err)
		}
		if v != nil {
			visitorID = v.ID
			if err := r.visitors.Touch(v.ID); err != nil {
				r.logger.Warn("touch visitor", "visitor", v.ID, "error", err)
			}
		}
	}
	if visitorID == "" {
		v, err := r.visitors.Create()
		if err != nil {
			return nil, "", fmt.Errorf("create visitor: %w", err)
		}
		visitorID, token = v.ID, v.Token
		r.logger.Info("new visitor", "visitor", visitorID)
	}

	jar, err := store.NewPersistentJar(r.cookies, visitorID, r.logger.With("component", "jar"))
	if err != nil {
		return nil, "", fmt.Errorf("cookie jar: %w", err)
	}

	a := app.New(visitorID, app.Config{
		APIURL:     r.cfg.APIURL,
		APITimeout: r.cfg.APITimeout,
		Jar:        jar,
		Path:       path,
	}, r.logger)
	if r.cfg.OnCreate != nil {
		r.cfg.OnCreate(a)
	}
	r.apps[token] = a
	return a, token, nil
}

// Len returns the number of apps in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.apps)
}

// Cleanup evicts apps idle longer than the idle timeout and deletes visitors
// unseen for longer than the retention period, along with expired cookies.
// Visitors whose app is still in memory count as seen at now.
func (r *Registry) Cleanup(now time.Time) {
	seen := make(map[string]time.Time)
	r.mu.Lock()
	evicted := 0
	for token, a := range r.apps {
		last := a.LastSeen()
		if now.Sub(last) > r.cfg.IdleTimeout {
			delete(r.apps, token)
			evicted++
			seen[a.VisitorID] = last
			continue
		}
		seen[a.VisitorID] = now
	}
	r.mu.Unlock()

	for id, at := range seen {
		if err := r.visitors.TouchAt(id, at); err != nil {
			r.logger.Warn("touch visitor", "visitor", id, "error", err)
		}
	}
	if evicted > 0 {
		r.logger.Info("evicted idle visitors", "count", evicted)
	}

	if n, err := r.visitors.DeleteIdle(now.Add(-r.cfg.Retention)); err != nil {
		r.logger.Error("delete idle visitors", "error", err)
	} else if n > 0 {
		r.logger.Info("deleted idle visitors", "count", n)
	}
	if _, err := r.cookies.DeleteExpired(); err != nil {
		r.logger.Error("delete expired cookies", "error", err)
	}
}
