package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famdesk/internal/app"
	"github.com/dukerupert/famdesk/internal/auth"
	"github.com/dukerupert/famdesk/internal/model"
	"github.com/dukerupert/famdesk/internal/nav"
	"github.com/dukerupert/famdesk/internal/view"
	ws "github.com/dukerupert/famdesk/internal/websocket"
)

// Notifier pushes events to a visitor's open tabs.
type Notifier interface {
	Send(visitorID string, msg ws.Message)
}

// HomeHandler serves the family-member page and its dialog and delete steps.
type HomeHandler struct {
	pages    *Renderer
	notifier Notifier
	logger   *slog.Logger
}

func NewHomeHandler(pages *Renderer, notifier Notifier, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{pages: pages, notifier: notifier, logger: logger}
}

func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	home := a.Home()
	home.Load(r.Context())
	h.render(w, r, a, http.StatusOK, home, nil)
}

func (h *HomeHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	home := a.Home()
	home.Load(r.Context())
	home.OpenCreate()
	h.render(w, r, a, http.StatusOK, home, nil)
}

func (h *HomeHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	home := a.Home()
	home.Load(r.Context())

	m, found := home.Find(r.PathValue("id"))
	if !found {
		if home.Error == "" {
			home.Error = "Invalid family member ID"
		}
		h.render(w, r, a, http.StatusNotFound, home, nil)
		return
	}
	home.OpenEdit(m)
	h.render(w, r, a, http.StatusOK, home, nil)
}

func (h *HomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

func (h *HomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, r.PathValue("id"))
}

func (h *HomeHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	home := a.Home()
	if id == "" {
		home.OpenCreate()
	} else {
		home.OpenEdit(model.FamilyMember{ID: id})
	}
	home.Form = view.FamilyForm{
		Name:         r.FormValue("name"),
		Relationship: r.FormValue("relationship"),
		Age:          r.FormValue("age"),
	}

	if !home.Submit(r.Context()) {
		if followRedirect(w, r, a) {
			return
		}
		msg := home.Error
		home.Load(r.Context())
		home.Error = msg
		h.render(w, r, a, http.StatusUnprocessableEntity, home, nil)
		return
	}

	action := "created"
	if id != "" {
		action = "updated"
	}
	h.notifier.Send(a.VisitorID, ws.FamilyChangedMessage(action, id))
	if followRedirect(w, r, a) {
		return
	}
	http.Redirect(w, r, nav.HomePath, http.StatusSeeOther)
}

func (h *HomeHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	home := a.Home()
	home.Load(r.Context())

	m, found := home.Find(r.PathValue("id"))
	if !found {
		if home.Error == "" {
			home.Error = "Invalid family member ID"
		}
		h.render(w, r, a, http.StatusNotFound, home, nil)
		return
	}
	h.render(w, r, a, http.StatusOK, home, &m)
}

func (h *HomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := currentApp(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	confirmed := r.FormValue("confirm") == "yes"

	home := a.Home()
	if !home.Delete(r.Context(), id, confirmed) {
		if followRedirect(w, r, a) {
			return
		}
		if home.Error == "" {
			http.Redirect(w, r, nav.HomePath, http.StatusSeeOther)
			return
		}
		msg := home.Error
		home.Load(r.Context())
		home.Error = msg
		h.render(w, r, a, http.StatusUnprocessableEntity, home, nil)
		return
	}

	h.notifier.Send(a.VisitorID, ws.FamilyChangedMessage("deleted", id))
	if followRedirect(w, r, a) {
		return
	}
	http.Redirect(w, r, nav.HomePath, http.StatusSeeOther)
}

func (h *HomeHandler) render(w http.ResponseWriter, r *http.Request, a *app.App, status int, home *view.Home, confirm *model.FamilyMember) {
	if followRedirect(w, r, a) {
		return
	}
	user := auth.User(r.Context())
	if user == nil {
		http.Redirect(w, r, nav.LoginPath, http.StatusSeeOther)
		return
	}
	h.pages.Render(w, r, status, "home.html", map[string]any{
		"User":          user,
		"Home":          home,
		"Relationships": model.Relationships,
		"Confirm":       confirm,
	})
}
