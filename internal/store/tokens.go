package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/resell/internal/auth"
)

// ErrNoTokenID is returned when claims lack the JTI or expiry needed for
// revocation.
var ErrNoTokenID = errors.New("token has no id or expiry")

// RevokeClaims puts the token described by claims on the revocation list
// until it expires. Revoking twice is not an error. Revocations of tokens
// that have already expired are pruned afterwards; a failed prune is logged.
func RevokeClaims(ctx context.Context, db *sql.DB, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return ErrNoTokenID
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		claims.ID, claims.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("revoking token %s: %w", claims.ID, err)
	}

	if _, err := PruneRevokedTokens(ctx, db, time.Now()); err != nil {
		slog.Warn("failed to prune revoked tokens", "error", err)
	}
	return nil
}

// PruneRevokedTokens drops revocations whose token expired before now and
// returns how many were removed.
func PruneRevokedTokens(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning revoked tokens: %w", err)
	}
	return result.RowsAffected()
}

// IsRevoked reports whether the token described by claims was revoked.
// Claims without a JTI are never on the list.
func IsRevoked(ctx context.Context, db *sql.DB, claims *auth.Claims) (bool, error) {
	if claims == nil || claims.ID == "" {
		return false, nil
	}

	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ?)`, claims.ID,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking revocation of %s: %w", claims.ID, err)
	}
	return revoked, nil
}
