// Package nav tracks where a visitor's browser is, so that code running
// outside a request (the 401 interceptor) can both ask "is the user on an
// auth page?" and send the browser somewhere else.
package nav

import (
	"strings"
	"sync"
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	HomePath     = "/"
)

// IsAuthRoute reports whether path is exactly one of the auth pages.
func IsAuthRoute(path string) bool {
	return path == LoginPath || path == RegisterPath
}

// IsAuthPage is the looser check used on 401: any path mentioning login or
// register counts.
func IsAuthPage(path string) bool {
	return strings.Contains(path, LoginPath) || strings.Contains(path, RegisterPath)
}

// Location is the current path of one visitor's browser.
type Location struct {
	mu        sync.Mutex
	path      string
	pending   string
	listeners map[int]func(path string)
	nextID    int
}

func NewLocation(path string) *Location {
	if path == "" {
		path = HomePath
	}
	return &Location{
		path:      path,
		listeners: make(map[int]func(string)),
	}
}

// Path returns the current path.
func (l *Location) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Visit records that the browser itself loaded path.
func (l *Location) Visit(path string) {
	l.mu.Lock()
	l.path = path
	l.mu.Unlock()
}

// Navigate sends the browser to path. The in-flight request picks it up via
// TakeRedirect; listeners (open websocket tabs) are told as well.
func (l *Location) Navigate(path string) {
	l.mu.Lock()
	l.path = path
	l.pending = path
	fns := make([]func(string), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
}

// TakeRedirect returns and clears the pending navigation, if any.
func (l *Location) TakeRedirect() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pending
	l.pending = ""
	return p, p != ""
}

// OnNavigate registers fn for every Navigate call and returns a func that
// removes it.
func (l *Location) OnNavigate(fn func(path string)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}
