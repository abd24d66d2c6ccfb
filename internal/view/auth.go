// Package view holds the form and list logic behind famdesk's pages. It
// knows nothing about HTTP: handlers feed it raw form values and render what
// it leaves behind.
package view

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukerupert/famdesk/internal/api"
	"github.com/dukerupert/famdesk/internal/validate"
)

// SessionActions is what the auth forms need from the session store.
type SessionActions interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) error
}

// LoginForm is the raw login form.
type LoginForm struct {
	Email    string
	Password string
	Error    string
}

// Submit validates the form and signs in. It reports success; on failure
// f.Error holds a message safe to show. Backend detail is never shown.
func (f *LoginForm) Submit(ctx context.Context, s SessionActions) bool {
	f.Error = ""

	if res := validate.Email(f.Email); !res.Valid {
		f.Error = res.Error
		return false
	}
	if f.Password == "" {
		f.Error = "Password is required"
		return false
	}

	if err := s.Login(ctx, validate.NormalizeEmail(f.Email), f.Password); err != nil {
		if api.StatusCode(err) == http.StatusUnauthorized {
			f.Error = "Invalid email or password"
		} else {
			f.Error = "Login failed. Please try again."
		}
		return false
	}
	return true
}

// RegisterForm is the raw sign-up form.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Error           string
}

// Submit validates name, email, the password confirmation and the password
// in that order, then creates the account.
func (f *RegisterForm) Submit(ctx context.Context, s SessionActions) bool {
	f.Error = ""

	if res := validate.Name(f.Name); !res.Valid {
		f.Error = res.Error
		return false
	}
	if res := validate.Email(f.Email); !res.Valid {
		f.Error = res.Error
		return false
	}
	if f.Password != f.ConfirmPassword {
		f.Error = "Passwords do not match"
		return false
	}
	if res := validate.Password(f.Password); !res.Valid {
		f.Error = res.Error
		return false
	}

	err := s.Register(ctx, strings.TrimSpace(f.Name), validate.NormalizeEmail(f.Email), f.Password)
	if err != nil {
		switch api.StatusCode(err) {
		case http.StatusConflict:
			f.Error = "An account with this email already exists"
		case http.StatusBadRequest:
			f.Error = "Invalid registration data. Please check your input."
		default:
			f.Error = "Registration failed. Please try again."
		}
		return false
	}
	return true
}
