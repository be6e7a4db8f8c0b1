package session

import (
	"context"
	"database/sql"

	"github.com/erazemk/resell/internal/store"
)

// SQLiteStorage keeps the session in the settings table of a local SQLite
// database.
type SQLiteStorage struct {
	DB *sql.DB
}

// Load returns the stored pair. Missing keys come back empty.
func (s *SQLiteStorage) Load(ctx context.Context) (Record, error) {
	token, username, err := store.LoadCredentials(ctx, s.DB)
	if err != nil {
		return Record{}, err
	}
	return Record{Token: token, Username: username}, nil
}

// Save writes both keys in one transaction.
func (s *SQLiteStorage) Save(ctx context.Context, r Record) error {
	return store.SaveCredentials(ctx, s.DB, r.Token, r.Username)
}

// Clear removes both keys.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	return store.ClearCredentials(ctx, s.DB)
}
