package middleware

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famdesk/internal/auth"
	"github.com/dukerupert/famdesk/internal/guard"
	"github.com/dukerupert/famdesk/internal/nav"
	"github.com/dukerupert/famdesk/internal/visitor"
)

const visitorCookieMaxAge = 365 * 24 * 60 * 60

// Visitor resolves the browser's app from its visitor cookie, issuing a new
// cookie when needed, and bootstraps the app on its first request.
// Full-page GETs update the app's location.
func Visitor(reg *visitor.Registry, secureCookies bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(visitor.CookieName); err == nil {
				token = c.Value
			}

			a, issued, err := reg.Resolve(r.Context(), token, r.URL.Path)
			if err != nil {
				logger.Error("resolve visitor", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if issued != token {
				http.SetCookie(w, &http.Cookie{
					Name:     visitor.CookieName,
					Value:    issued,
					Path:     "/",
					MaxAge:   visitorCookieMaxAge,
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if isPageLoad(r) {
				a.Location.Visit(r.URL.Path)
			}
			a.Bootstrap(r.Context())

			next.ServeHTTP(w, r.WithContext(auth.WithApp(r.Context(), a)))
		})
	}
}

func isPageLoad(r *http.Request) bool {
	return r.Method == http.MethodGet &&
		r.Header.Get("HX-Request") != "true" &&
		r.Header.Get("Upgrade") == ""
}

// RequireSession applies the route guard. Until the session is known a
// loading page is served; a signed-out visitor is sent to the login page.
// HTMX-aware: returns HX-Redirect header instead of 303 redirect for HTMX requests.
func RequireSession(loading http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := auth.FromContext(r.Context())
			if !ok {
				redirectToLogin(w, r)
				return
			}

			switch guard.Decide(a.Session.State()) {
			case guard.Loading:
				loading.ServeHTTP(w, r)
			case guard.RedirectLogin:
				a.Location.TakeRedirect()
				a.Location.Visit(nav.LoginPath)
				redirectToLogin(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", nav.LoginPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, nav.LoginPath, http.StatusSeeOther)
}
