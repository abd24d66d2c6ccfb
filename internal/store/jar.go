package store

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/famdesk/internal/model"
)

// PersistentJar is an http.CookieJar that writes every cookie it accepts
// through to a CookieStore and starts out with whatever the store already
// holds for its visitor.
type PersistentJar struct {
	inner     *cookiejar.Jar
	cookies   *CookieStore
	visitorID string
	logger    *slog.Logger
	now       func() time.Time
}

func NewPersistentJar(cookies *CookieStore, visitorID string, logger *slog.Logger) (*PersistentJar, error) {
	if logger == nil {
		logger = slog.Default()
	}
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}
	j := &PersistentJar{
		inner:     inner,
		cookies:   cookies,
		visitorID: visitorID,
		logger:    logger,
		now:       time.Now,
	}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *PersistentJar) load() error {
	stored, err := j.cookies.ListByVisitor(j.visitorID)
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}
	for _, c := range stored {
		u, err := url.Parse(c.Origin)
		if err != nil {
			j.logger.Warn("skipping cookie with bad origin", "origin", c.Origin, "error", err)
			continue
		}
		j.inner.SetCookies(u, []*http.Cookie{{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}})
	}
	return nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	origin := u.Scheme + "://" + u.Host
	for _, c := range cookies {
		sc := model.StoredCookie{
			VisitorID: j.visitorID,
			Origin:    origin,
			Name:      c.Name,
			Value:     c.Value,
			Domain:    c.Domain,
			Path:      c.Path,
			Secure:    c.Secure,
			HTTPOnly:  c.HttpOnly,
		}
		if sc.Path == "" || !strings.HasPrefix(sc.Path, "/") {
			sc.Path = defaultPath(u.Path)
		}

		now := j.now()
		switch {
		case c.MaxAge < 0:
			j.remove(sc)
			continue
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			if !c.Expires.After(now) {
				j.remove(sc)
				continue
			}
			sc.Expires = c.Expires
		}

		if err := j.cookies.Save(sc); err != nil {
			j.logger.Error("persist cookie", "visitor", j.visitorID, "name", c.Name, "error", err)
		}
	}
}

func (j *PersistentJar) remove(c model.StoredCookie) {
	if err := j.cookies.Delete(c); err != nil {
		j.logger.Error("remove cookie", "visitor", j.visitorID, "name", c.Name, "error", err)
	}
}

// defaultPath is the cookie default-path of a request path (RFC 6265 5.1.4).
func defaultPath(path string) string {
	if path == "" || path[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}
	return path[:i]
}
