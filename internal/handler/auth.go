package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famdesk/internal/app"
	"github.com/dukerupert/famdesk/internal/auth"
	"github.com/dukerupert/famdesk/internal/nav"
	"github.com/dukerupert/famdesk/internal/view"
)

type AuthHandler struct {
	pages  *Renderer
	logger *slog.Logger
}

func NewAuthHandler(pages *Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{pages: pages, logger: logger}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "login.html", map[string]any{
		"Title": "Sign In",
		"Form":  &view.LoginForm{},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	a.Location.Visit(nav.LoginPath)

	form := &view.LoginForm{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if !form.Submit(r.Context(), a.Session) {
		form.Password = ""
		h.pages.Render(w, r, http.StatusUnprocessableEntity, "login.html", map[string]any{
			"Title": "Sign In",
			"Form":  form,
		})
		return
	}

	h.logger.Info("signed in", "visitor", a.VisitorID)
	goHome(w, r, a)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "register.html", map[string]any{
		"Title": "Sign Up",
		"Form":  &view.RegisterForm{},
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	a.Location.Visit(nav.RegisterPath)

	form := &view.RegisterForm{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	if !form.Submit(r.Context(), a.Session) {
		form.Password, form.ConfirmPassword = "", ""
		h.pages.Render(w, r, http.StatusUnprocessableEntity, "register.html", map[string]any{
			"Title": "Sign Up",
			"Form":  form,
		})
		return
	}

	h.logger.Info("registered", "visitor", a.VisitorID)
	goHome(w, r, a)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	a.Logout(r.Context())
	a.Location.TakeRedirect()
	http.Redirect(w, r, nav.LoginPath, http.StatusSeeOther)
}

func currentApp(w http.ResponseWriter, r *http.Request) (*app.App, bool) {
	a, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "no visitor", http.StatusInternalServerError)
		return nil, false
	}
	return a, true
}

func goHome(w http.ResponseWriter, r *http.Request, a *app.App) {
	a.Location.TakeRedirect()
	a.Location.Visit(nav.HomePath)
	http.Redirect(w, r, nav.HomePath, http.StatusSeeOther)
}

// followRedirect sends the browser wherever the app was navigated during
// this request, e.g. to the login page after a 401.
func followRedirect(w http.ResponseWriter, r *http.Request, a *app.App) bool {
	to, ok := a.Location.TakeRedirect()
	if !ok {
		return false
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return true
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
	return true
}
