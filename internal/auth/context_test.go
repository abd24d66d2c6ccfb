package auth

import (
	"context"
	"testing"

	"github.com/dukerupert/famdesk/internal/app"
	"github.com/dukerupert/famdesk/internal/model"
)

func TestWithAppAndFromContext(t *testing.T) {
	a := app.New("v1", app.Config{APIURL: "http://127.0.0.1:1/api", Path: "/login"}, nil)
	a.Session.SetUser(&model.User{ID: "u1", Name: "Ann"})

	ctx := WithApp(context.Background(), a)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected app in context")
	}
	if got != a {
		t.Error("got a different app")
	}
	if VisitorID(ctx) != "v1" {
		t.Errorf("VisitorID = %q, want %q", VisitorID(ctx), "v1")
	}
	if u := User(ctx); u == nil || u.Name != "Ann" {
		t.Errorf("User = %+v", u)
	}
}

func TestFromContextMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("expected false for missing app")
	}
	if User(ctx) != nil {
		t.Error("expected nil user")
	}
	if VisitorID(ctx) != "" {
		t.Error("expected empty visitor id")
	}
}
