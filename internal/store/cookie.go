package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/famdesk/internal/model"
)

// Sealer encrypts cookie values at rest.
type Sealer interface {
	Seal(plaintext, additional []byte) ([]byte, error)
	Open(sealed, additional []byte) ([]byte, error)
}

// CookieStore keeps the backend's cookies for each visitor so a restart does
// not sign everyone out.
type CookieStore struct {
	db     *sql.DB
	sealer Sealer
	logger *slog.Logger
	now    func() time.Time
}

func NewCookieStore(db *sql.DB, sealer Sealer, logger *slog.Logger) *CookieStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CookieStore{db: db, sealer: sealer, logger: logger, now: time.Now}
}

func additionalData(c model.StoredCookie) []byte {
	return []byte(c.VisitorID + "\x00" + c.Origin + "\x00" + c.Name)
}

// Save inserts or replaces a cookie.
func (s *CookieStore) Save(c model.StoredCookie) error {
	sealed, err := s.sealer.Seal([]byte(c.Value), additionalData(c))
	if err != nil {
		return fmt.Errorf("seal cookie %q: %w", c.Name, err)
	}

	var expires any
	if !c.Expires.IsZero() {
		expires = c.Expires.UTC().Unix()
	}

	_, err = s.db.Exec(
		`INSERT INTO backend_cookies (visitor_id, origin, name, domain, path, value, expires_at, secure, http_only)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(visitor_id, origin, name, domain, path) DO UPDATE SET
		   value = excluded.value, expires_at = excluded.expires_at,
		   secure = excluded.secure, http_only = excluded.http_only`,
		c.VisitorID, c.Origin, c.Name, c.Domain, c.Path, sealed, expires, c.Secure, c.HTTPOnly,
	)
	if err != nil {
		return fmt.Errorf("save cookie %q: %w", c.Name, err)
	}
	return nil
}

func (s *CookieStore) Delete(c model.StoredCookie) error {
	_, err := s.db.Exec(
		`DELETE FROM backend_cookies WHERE visitor_id = ? AND origin = ? AND name = ? AND domain = ? AND path = ?`,
		c.VisitorID, c.Origin, c.Name, c.Domain, c.Path,
	)
	if err != nil {
		return fmt.Errorf("delete cookie %q: %w", c.Name, err)
	}
	return nil
}

// ListByVisitor returns the visitor's unexpired cookies with their values
// opened. Values that no longer open, e.g. after the secret changed, are
// skipped.
func (s *CookieStore) ListByVisitor(visitorID string) ([]model.StoredCookie, error) {
	rows, err := s.db.Query(
		`SELECT origin, name, domain, path, value, expires_at, secure, http_only
		 FROM backend_cookies
		 WHERE visitor_id = ? AND (expires_at IS NULL OR expires_at > ?)
		 ORDER BY origin, name`,
		visitorID, s.now().UTC().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("query cookies: %w", err)
	}
	defer rows.Close()

	var cookies []model.StoredCookie
	for rows.Next() {
		c := model.StoredCookie{VisitorID: visitorID}
		var sealed []byte
		var expires sql.NullInt64
		if err := rows.Scan(&c.Origin, &c.Name, &c.Domain, &c.Path, &sealed, &expires, &c.Secure, &c.HTTPOnly); err != nil {
			return nil, fmt.Errorf("scan cookie: %w", err)
		}
		if expires.Valid {
			c.Expires = time.Unix(expires.Int64, 0).UTC()
		}

		value, err := s.sealer.Open(sealed, additionalData(c))
		if err != nil {
			s.logger.Warn("dropping unreadable cookie", "visitor", visitorID, "name", c.Name, "error", err)
			continue
		}
		c.Value = string(value)
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}

func (s *CookieStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM backend_cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		s.now().UTC().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired cookies: %w", err)
	}
	return result.RowsAffected()
}
