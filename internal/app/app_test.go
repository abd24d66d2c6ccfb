package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dukerupert/famdesk/internal/guard"
)

// backend is a fake API that records the paths it was asked for.
type backend struct {
	mu       sync.Mutex
	calls    []string
	meStatus int
	// meBody, when set, replaces the user in a 200 /auth/me response.
	meBody *string
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == path {
			n++
		}
	}
	return n
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	record := func(r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
	}
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if b.meStatus != 0 && b.meStatus != http.StatusOK {
			w.WriteHeader(b.meStatus)
			json.NewEncoder(w).Encode(map[string]string{"message": "Not authenticated"})
			return
		}
		if b.meBody != nil {
			w.Write([]byte(*b.meBody))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"_id": "u1", "name": "Ann", "email": "ann@example.com"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /api/family", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusUnauthorized)
	})
	return mux
}

func setup(t *testing.T, path string, b *backend) *App {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return New("v1", Config{APIURL: srv.URL + "/api", Jar: jar, Path: path}, nil)
}

func TestBootstrapOnAuthPageSkipsFetch(t *testing.T) {
	for _, path := range []string{"/login", "/register"} {
		b := &backend{}
		a := setup(t, path, b)

		a.Bootstrap(context.Background())

		if n := b.count("GET /api/auth/me"); n != 0 {
			t.Errorf("%s: /auth/me calls = %d, want 0", path, n)
		}
		st := a.Session.State()
		if !st.Initialized || st.Loading {
			t.Errorf("%s: state = %+v", path, st)
		}
	}
}

func TestBootstrapFetchesOnce(t *testing.T) {
	b := &backend{}
	a := setup(t, "/", b)

	a.Bootstrap(context.Background())
	a.Bootstrap(context.Background())

	if n := b.count("GET /api/auth/me"); n != 1 {
		t.Errorf("/auth/me calls = %d, want 1", n)
	}
	st := a.Session.State()
	if st.User == nil || st.User.Name != "Ann" {
		t.Errorf("user = %+v", st.User)
	}
	if guard.Decide(st) != guard.Render {
		t.Errorf("guard = %v, want Render", guard.Decide(st))
	}
}

func TestBootstrapWithoutUserBodySignsOut(t *testing.T) {
	for _, body := range []string{"", "null"} {
		b := &backend{meBody: &body}
		a := setup(t, "/", b)

		a.Bootstrap(context.Background())

		st := a.Session.State()
		if st.User != nil {
			t.Errorf("body %q: user = %+v, want nil", body, st.User)
		}
		if guard.Decide(st) != guard.RedirectLogin {
			t.Errorf("body %q: guard = %v, want RedirectLogin", body, guard.Decide(st))
		}
	}
}

func TestUnauthorizedOnProtectedPage(t *testing.T) {
	b := &backend{}
	a := setup(t, "/", b)
	a.Bootstrap(context.Background())

	home := a.Home()
	home.Load(context.Background())

	st := a.Session.State()
	if st.User != nil {
		t.Error("user should be cleared")
	}
	if guard.Decide(st) != guard.RedirectLogin {
		t.Errorf("guard = %v", guard.Decide(st))
	}
	if n := b.count("POST /api/auth/logout"); n != 1 {
		t.Errorf("logout calls = %d, want 1 (no recursion)", n)
	}
	to, ok := a.Location.TakeRedirect()
	if !ok || to != "/login" {
		t.Errorf("redirect = %q, %v", to, ok)
	}
	if a.Location.Path() != "/login" {
		t.Errorf("path = %q", a.Location.Path())
	}
}

func TestUnauthorizedOnAuthPage(t *testing.T) {
	b := &backend{meStatus: http.StatusUnauthorized}
	a := setup(t, "/", b)
	a.Bootstrap(context.Background())
	a.Location.TakeRedirect()
	a.Location.Visit("/login")

	a.Session.SetUser(nil)
	a.Session.FetchUser(context.Background())

	if n := b.count("POST /api/auth/logout"); n != 1 {
		t.Errorf("logout calls = %d, want only the bootstrap one", n)
	}
	if _, ok := a.Location.TakeRedirect(); ok {
		t.Error("no navigation expected on an auth page")
	}
	if a.Session.State().User != nil {
		t.Error("user should be nil")
	}
}

func TestLogoutNavigates(t *testing.T) {
	b := &backend{}
	a := setup(t, "/", b)
	a.Bootstrap(context.Background())

	a.Logout(context.Background())

	if a.Session.State().User != nil {
		t.Error("user should be cleared")
	}
	if to, ok := a.Location.TakeRedirect(); !ok || to != "/login" {
		t.Errorf("redirect = %q, %v", to, ok)
	}
}
