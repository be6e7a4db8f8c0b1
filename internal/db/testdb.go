package db

import (
	"database/sql"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the backend schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// NewTestSessionDB creates a fresh in-memory SQLite database for client session state.
func NewTestSessionDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test session database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := EnsureSessionSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating test session schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
