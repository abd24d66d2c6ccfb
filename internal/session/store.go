// Package session holds the signed-in state for one visitor: who the user
// is, and whether that is known yet.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/famdesk/internal/model"
)

// AuthAPI is the slice of the backend client the store needs.
type AuthAPI interface {
	Me(ctx context.Context) (*model.User, error)
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context) error
}

// State is a snapshot of the store. User is nil when nobody is signed in.
type State struct {
	User        *model.User
	Loading     bool
	Initialized bool
	Fetching    bool
}

// Store is the single source of truth for a visitor's session. Fields change
// only through its methods.
type Store struct {
	mu        sync.Mutex
	api       AuthAPI
	state     State
	listeners map[int]func(State)
	nextID    int
	logger    *slog.Logger
}

// NewStore returns a store in its start-up state: no user, loading, not yet
// initialized.
func NewStore(api AuthAPI, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:       api,
		state:     State{Loading: true},
		listeners: make(map[int]func(State)),
		logger:    logger,
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe calls fn with every new state until the returned func is called.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(fn func(*State)) {
	s.updateIf(func(st *State) bool {
		fn(st)
		return true
	})
}

// updateIf applies fn under the lock and notifies listeners only when fn
// reports a change.
func (s *Store) updateIf(fn func(*State) bool) bool {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	snapshot := s.state
	fns := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		fns = append(fns, l)
	}
	s.mu.Unlock()

	for _, l := range fns {
		l(snapshot)
	}
	return true
}

// FetchUser asks the backend who is signed in. Only one fetch runs at a
// time; a call made while another is in flight returns immediately. Any
// failure, including "no session", leaves the store signed out. It never
// reports an error.
func (s *Store) FetchUser(ctx context.Context) {
	started := s.updateIf(func(st *State) bool {
		if st.Fetching {
			return false
		}
		st.Loading = true
		st.Fetching = true
		return true
	})
	if !started {
		return
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Debug("no current user", "error", err)
		user = nil
	}

	s.update(func(st *State) {
		st.User = user
		st.Loading = false
		st.Initialized = true
		st.Fetching = false
	})
}

// Login posts the credentials and, once the backend has set its session
// cookie, loads the user. Backend errors are returned untouched in meaning;
// turning them into user-facing text is the caller's job.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.update(func(st *State) { st.Loading = true })

	if err := s.api.Login(ctx, email, password); err != nil {
		s.update(func(st *State) { st.Loading = false })
		return fmt.Errorf("login: %w", err)
	}

	s.FetchUser(ctx)
	return nil
}

// Register creates the account and loads the new user, like Login.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	s.update(func(st *State) { st.Loading = true })

	if err := s.api.Register(ctx, name, email, password); err != nil {
		s.update(func(st *State) { st.Loading = false })
		return fmt.Errorf("register: %w", err)
	}

	s.FetchUser(ctx)
	return nil
}

// Logout always ends signed out, whether or not the backend call succeeds.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Debug("backend logout failed", "error", err)
	}

	s.update(func(st *State) {
		st.User = nil
		st.Loading = false
		st.Initialized = true
	})
}

// SetUser overwrites the user without touching the other flags.
func (s *Store) SetUser(user *model.User) {
	s.update(func(st *State) { st.User = user })
}

// MarkInitialized finishes start-up without asking the backend.
func (s *Store) MarkInitialized() {
	s.update(func(st *State) {
		st.Initialized = true
		st.Loading = false
	})
}
