package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dukerupert/famdesk/internal/model"
	"github.com/google/uuid"
)

type VisitorStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewVisitorStore(db *sql.DB) *VisitorStore {
	return &VisitorStore{db: db, now: time.Now}
}

func scanVisitor(scanner interface{ Scan(...any) error }) (*model.Visitor, error) {
	var v model.Visitor
	var created, seen int64
	err := scanner.Scan(&v.ID, &v.Token, &created, &seen)
	if err != nil {
		return nil, err
	}
	v.CreatedAt = time.Unix(created, 0).UTC()
	v.LastSeenAt = time.Unix(seen, 0).UTC()
	return &v, nil
}

const visitorCols = `id, token, created_at, last_seen_at`

// Create registers a new browser with a uuid id and a crypto-random token.
func (s *VisitorStore) Create() (*model.Visitor, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	now := s.now().UTC().Unix()

	v := &model.Visitor{
		ID:         uuid.NewString(),
		Token:      hex.EncodeToString(tokenBytes),
		CreatedAt:  time.Unix(now, 0).UTC(),
		LastSeenAt: time.Unix(now, 0).UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO visitors (id, token, created_at, last_seen_at) VALUES (?, ?, ?, ?)`,
		v.ID, v.Token, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert visitor: %w", err)
	}
	return v, nil
}

// GetByToken returns the visitor for the given token, or nil if not found.
func (s *VisitorStore) GetByToken(token string) (*model.Visitor, error) {
	row := s.db.QueryRow(`SELECT `+visitorCols+` FROM visitors WHERE token = ?`, token)
	v, err := scanVisitor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get visitor by token: %w", err)
	}
	return v, nil
}

func (s *VisitorStore) Touch(id string) error {
	return s.TouchAt(id, s.now())
}

// TouchAt records at as the visitor's last activity.
func (s *VisitorStore) TouchAt(id string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE visitors SET last_seen_at = ? WHERE id = ?`, at.UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("touch visitor: %w", err)
	}
	return nil
}

func (s *VisitorStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM visitors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete visitor: %w", err)
	}
	return nil
}

// DeleteIdle removes visitors not seen since before. Their cookies go with
// them.
func (s *VisitorStore) DeleteIdle(before time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM visitors WHERE last_seen_at < ?`, before.UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete idle visitors: %w", err)
	}
	return result.RowsAffected()
}
