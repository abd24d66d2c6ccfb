// Package app assembles the per-visitor pieces: backend client, session
// store and location. It owns the 401 interceptor and the one-time
// bootstrap.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dukerupert/famdesk/internal/api"
	"github.com/dukerupert/famdesk/internal/nav"
	"github.com/dukerupert/famdesk/internal/session"
	"github.com/dukerupert/famdesk/internal/view"
)

type Config struct {
	APIURL     string
	APITimeout time.Duration
	Jar        http.CookieJar
	// Path is where the browser was when the app was created.
	Path string
}

// App is everything famdesk knows about one browser.
type App struct {
	VisitorID string
	API       *api.Client
	Session   *session.Store
	Location  *nav.Location

	logger   *slog.Logger
	bootOnce sync.Once

	mu       sync.Mutex
	lastSeen time.Time
}

func New(visitorID string, cfg Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("visitor", visitorID)

	a := &App{
		VisitorID: visitorID,
		Location:  nav.NewLocation(cfg.Path),
		logger:    logger,
		lastSeen:  time.Now(),
	}
	a.API = api.NewClient(
		api.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout, Jar: cfg.Jar},
		api.WithUnauthorizedHandler(a.handleUnauthorized),
		api.WithLogger(logger.With("component", "api")),
	)
	a.Session = session.NewStore(a.API, logger.With("component", "session"))
	return a
}

// handleUnauthorized runs for every 401. On the login and register pages a
// 401 is an expected answer, so only the user is cleared. Anywhere else the
// session is over: log out without re-entering this handler and send the
// browser to the login page.
func (a *App) handleUnauthorized(ctx context.Context) {
	if nav.IsAuthPage(a.Location.Path()) {
		a.Session.SetUser(nil)
		return
	}

	a.logger.Info("backend session expired")
	a.Session.Logout(api.WithoutInterceptor(ctx))
	a.Location.Navigate(nav.LoginPath)
}

// Bootstrap runs once per app. On an auth page it only marks the session as
// initialized; everywhere else it asks the backend who is signed in.
func (a *App) Bootstrap(ctx context.Context) {
	a.bootOnce.Do(func() {
		if nav.IsAuthRoute(a.Location.Path()) {
			a.Session.MarkInitialized()
			return
		}
		a.Session.FetchUser(ctx)
	})
}

// Logout signs out and moves the browser to the login page. A 401 from the
// backend here changes nothing, so the interceptor is skipped.
func (a *App) Logout(ctx context.Context) {
	a.Session.Logout(api.WithoutInterceptor(ctx))
	a.Location.Navigate(nav.LoginPath)
}

// Home returns a fresh family-member page backed by this app's client.
func (a *App) Home() *view.Home {
	return view.NewHome(a.API, a.logger.With("component", "family"))
}

// Touch records activity.
func (a *App) Touch() {
	a.mu.Lock()
	a.lastSeen = time.Now()
	a.mu.Unlock()
}

func (a *App) LastSeen() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSeen
}
