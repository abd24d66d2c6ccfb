package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/famdesk/internal/database"
	"github.com/dukerupert/famdesk/internal/secret"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSealer(t *testing.T) *secret.Sealer {
	t.Helper()
	s, err := secret.NewSealer("test-secret", []byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	return s
}

func setupCookieTestDB(t *testing.T) (*CookieStore, *VisitorStore) {
	t.Helper()
	db := setupTestDB(t)
	return NewCookieStore(db, testSealer(t), nil), NewVisitorStore(db)
}
