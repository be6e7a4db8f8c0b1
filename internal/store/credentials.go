package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Keys of the persisted client credential pair.
const (
	TokenKey    = "token"
	UsernameKey = "username"
)

// SaveCredentials stores the token and username together. Either both keys
// are written or neither is.
func SaveCredentials(ctx context.Context, db *sql.DB, token, username string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, kv := range [][2]string{{TokenKey, token}, {UsernameKey, username}} {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
			kv[0], kv[1],
		)
		if err != nil {
			return fmt.Errorf("storing %s: %w", kv[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing credentials: %w", err)
	}
	return nil
}

// LoadCredentials returns the stored token and username. Missing keys are
// returned as empty strings.
func LoadCredentials(ctx context.Context, db *sql.DB) (token, username string, err error) {
	rows, err := db.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE key IN (?, ?)`, TokenKey, UsernameKey,
	)
	if err != nil {
		return "", "", fmt.Errorf("loading credentials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return "", "", fmt.Errorf("scanning credentials: %w", err)
		}
		switch key {
		case TokenKey:
			token = value
		case UsernameKey:
			username = value
		}
	}
	if err := rows.Err(); err != nil {
		return "", "", fmt.Errorf("loading credentials: %w", err)
	}
	return token, username, nil
}

// ClearCredentials removes both credential keys.
func ClearCredentials(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM settings WHERE key IN (?, ?)`, TokenKey, UsernameKey,
	)
	if err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	return nil
}
