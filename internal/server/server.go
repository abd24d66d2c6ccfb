package server

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/famdesk/internal/app"
	"github.com/dukerupert/famdesk/internal/auth"
	"github.com/dukerupert/famdesk/internal/handler"
	"github.com/dukerupert/famdesk/internal/middleware"
	"github.com/dukerupert/famdesk/internal/nav"
	"github.com/dukerupert/famdesk/internal/visitor"
	ws "github.com/dukerupert/famdesk/internal/websocket"
)

// Config holds the HTTP-facing settings.
type Config struct {
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	// AuthLimit bounds login and register submissions per client.
	AuthLimit middleware.Limit
}

type Server struct {
	cfg         Config
	registry    *visitor.Registry
	hub         *ws.Hub
	pages       *handler.Renderer
	static      fs.FS
	authH       *handler.AuthHandler
	homeH       *handler.HomeHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires the handlers. templates must hold templates/*.html; static is
// served under /static/.
func New(cfg Config, registry *visitor.Registry, hub *ws.Hub, templates, static fs.FS, logger *slog.Logger) (*Server, error) {
	pages, err := handler.NewRenderer(templates, logger.With("component", "template"))
	if err != nil {
		return nil, err
	}
	if cfg.AuthLimit.Requests == 0 {
		cfg.AuthLimit = middleware.Limit{Requests: 10, Window: time.Minute}
	}

	return &Server{
		cfg:         cfg,
		registry:    registry,
		hub:         hub,
		pages:       pages,
		static:      static,
		authH:       handler.NewAuthHandler(pages, logger.With("component", "auth")),
		homeH:       handler.NewHomeHandler(pages, hub, logger.With("component", "family")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Routes that need no visitor
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))

	appMux := http.NewServeMux()
	s.registerRoutes(appMux)

	outerMux.Handle("/", middleware.Chain(appMux,
		middleware.SecurityHeaders,
		middleware.CSRF(s.cfg.CSRFKey, s.cfg.SecureCookies, s.cfg.TrustedOrigins),
		middleware.Visitor(s.registry, s.cfg.SecureCookies, s.logger.With("component", "visitor")),
	))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", s.authH.LoginPage)
	mux.HandleFunc("POST /login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("GET /register", s.authH.RegisterPage)
	mux.HandleFunc("POST /register", s.rateLimited(s.authH.Register))
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, visitorOf, s.logger.With("component", "websocket")))

	// Protected routes, behind the route guard
	guard := middleware.RequireSession(s.pages.Loading())
	mux.Handle("GET /{$}", guard(http.HandlerFunc(s.homeH.Home)))
	mux.Handle("GET /family/new", guard(http.HandlerFunc(s.homeH.NewForm)))
	mux.Handle("GET /family/{id}/edit", guard(http.HandlerFunc(s.homeH.EditForm)))
	mux.Handle("POST /family", guard(http.HandlerFunc(s.homeH.Create)))
	mux.Handle("POST /family/{id}", guard(http.HandlerFunc(s.homeH.Update)))
	mux.Handle("GET /family/{id}/delete", guard(http.HandlerFunc(s.homeH.ConfirmDelete)))
	mux.Handle("POST /family/{id}/delete", guard(http.HandlerFunc(s.homeH.Delete)))

	// Anything else goes home
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, nav.HomePath, http.StatusSeeOther)
	})
}

// ForwardNavigation relays every server-side navigation of a new app to
// the visitor's open tabs. It is meant as visitor.Config.OnCreate.
func ForwardNavigation(hub *ws.Hub) func(*app.App) {
	return func(a *app.App) {
		a.Location.OnNavigate(func(path string) {
			hub.Send(a.VisitorID, ws.NavigateMessage(path))
		})
	}
}

func visitorOf(r *http.Request) (string, bool) {
	id := auth.VisitorID(r.Context())
	return id, id != ""
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"visitors": s.registry.Len(),
		"sockets":  s.hub.ClientCount(""),
	})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByIPAndPath, s.cfg.AuthLimit, s.logger.With("component", "ratelimit"))
	return rl(h).ServeHTTP
}
