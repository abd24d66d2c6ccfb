package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dukerupert/famdesk/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrNoUser is returned by Me when the backend answers 2xx without a user.
var ErrNoUser = errors.New("backend returned no user")

// Me returns the user behind the current session cookie. An empty or null
// body, or a user without an id, is ErrNoUser.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u *model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	if u == nil || u.ID == "" {
		return nil, ErrNoUser
	}
	return u, nil
}

// Login posts credentials. On success the backend sets the session cookie.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, nil)
}

// Register creates an account and, on success, a session.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", registerRequest{Name: name, Email: email, Password: password}, nil)
}

// Logout invalidates the session on the backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
