// Package auth carries the current visitor's app through a request.
package auth

import (
	"context"

	"github.com/dukerupert/famdesk/internal/app"
	"github.com/dukerupert/famdesk/internal/model"
)

type contextKey struct{}

func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (*app.App, bool) {
	a, ok := ctx.Value(contextKey{}).(*app.App)
	return a, ok && a != nil
}

// User returns the signed-in user, or nil.
func User(ctx context.Context) *model.User {
	a, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return a.Session.State().User
}

func VisitorID(ctx context.Context) string {
	a, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return a.VisitorID
}
