package db

import (
	"database/sql"
	"fmt"
)

// settingsSchema is shared by the backend database and the client session file.
const settingsSchema = `
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// schema is the full backend database schema.
const schema = settingsSchema + `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    balance       REAL NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    brand       TEXT NOT NULL,
    condition   TEXT NOT NULL CHECK (condition IN ('NEW', 'LIKE_NEW', 'GOOD', 'FAIR', 'POOR', 'USED')),
    price       REAL NOT NULL CHECK (price > 0),
    size        TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK (status IN ('AVAILABLE', 'SOLD', 'RESERVED')),
    seller_id   INTEGER NOT NULL REFERENCES users(id),
    image       BLOB,
    image_mime  TEXT,
    listed_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_status_listed
    ON items(status, listed_at DESC);

CREATE TABLE IF NOT EXISTS transactions (
    id          INTEGER PRIMARY KEY,
    item_id     INTEGER NOT NULL UNIQUE REFERENCES items(id),
    seller_id   INTEGER NOT NULL REFERENCES users(id),
    buyer_id    INTEGER NOT NULL REFERENCES users(id),
    amount      REAL NOT NULL,
    commission  REAL NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all backend tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// EnsureSessionSchema creates the key/value table used for client-side session state.
func EnsureSessionSchema(db *sql.DB) error {
	_, err := db.Exec(settingsSchema)
	if err != nil {
		return fmt.Errorf("creating session schema: %w", err)
	}
	return nil
}
