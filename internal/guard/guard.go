// Package guard decides what a protected page may show for a given session
// state.
package guard

import "github.com/dukerupert/famdesk/internal/session"

type Outcome int

const (
	// Loading means the session is not known yet: show only a loading indicator.
	Loading Outcome = iota
	// RedirectLogin means nobody is signed in.
	RedirectLogin
	// Render means the protected content may be shown.
	Render
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case Render:
		return "render"
	}
	return "unknown"
}

// Decide applies the guard table. Loading is not consulted: until the store
// is initialized nothing else is trusted, and afterwards only the user
// matters.
func Decide(st session.State) Outcome {
	if !st.Initialized {
		return Loading
	}
	if st.User == nil {
		return RedirectLogin
	}
	return Render
}
