package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/resell/internal/auth"
	"github.com/erazemk/resell/internal/db"
)

func issuedClaims(t *testing.T, username string) *auth.Claims {
	t.Helper()
	token, err := auth.GenerateToken("secret", 1, username)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := auth.ValidateToken("secret", token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	return claims
}

func countRevocations(t *testing.T, ctx context.Context, database *sql.DB) int {
	t.Helper()
	var n int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM revoked_tokens`).Scan(&n); err != nil {
		t.Fatalf("counting revocations: %v", err)
	}
	return n
}

func TestRevokeClaims(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	bob := issuedClaims(t, "bob")
	alice := issuedClaims(t, "alice")

	revoked, err := IsRevoked(ctx, database, bob)
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Error("fresh token reported revoked")
	}

	if err := RevokeClaims(ctx, database, bob); err != nil {
		t.Fatalf("RevokeClaims: %v", err)
	}
	if err := RevokeClaims(ctx, database, bob); err != nil {
		t.Fatalf("second RevokeClaims: %v", err)
	}

	if revoked, _ := IsRevoked(ctx, database, bob); !revoked {
		t.Error("expected bob's token to be revoked")
	}
	if revoked, _ := IsRevoked(ctx, database, alice); revoked {
		t.Error("alice's token should be unaffected")
	}
	if n := countRevocations(t, ctx, database); n != 1 {
		t.Errorf("expected 1 revocation row, got %d", n)
	}
}

func TestRevokeClaimsRequiresID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	noID := issuedClaims(t, "bob")
	noID.ID = ""
	noExpiry := issuedClaims(t, "bob")
	noExpiry.ExpiresAt = nil

	for name, claims := range map[string]*auth.Claims{"nil": nil, "no jti": noID, "no expiry": noExpiry} {
		if err := RevokeClaims(ctx, database, claims); !errors.Is(err, ErrNoTokenID) {
			t.Errorf("%s: expected ErrNoTokenID, got %v", name, err)
		}
	}

	if revoked, err := IsRevoked(ctx, database, noID); err != nil || revoked {
		t.Errorf("claims without jti: revoked=%v err=%v", revoked, err)
	}
}

func TestRevokeClaimsPrunesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	stale := issuedClaims(t, "bob")
	stale.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	if err := RevokeClaims(ctx, database, stale); err != nil {
		t.Fatalf("RevokeClaims(stale): %v", err)
	}
	// The stale row went in and was pruned right away.
	if n := countRevocations(t, ctx, database); n != 0 {
		t.Errorf("expected expired revocation to be pruned, got %d rows", n)
	}

	live := issuedClaims(t, "alice")
	if err := RevokeClaims(ctx, database, live); err != nil {
		t.Fatalf("RevokeClaims(live): %v", err)
	}

	pruned, err := PruneRevokedTokens(ctx, database, time.Now())
	if err != nil {
		t.Fatalf("PruneRevokedTokens: %v", err)
	}
	if pruned != 0 {
		t.Errorf("live revocation pruned early: %d", pruned)
	}

	pruned, err = PruneRevokedTokens(ctx, database, time.Now().Add(auth.TokenExpiry+time.Hour))
	if err != nil {
		t.Fatalf("PruneRevokedTokens: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 pruned after expiry, got %d", pruned)
	}
	if revoked, _ := IsRevoked(ctx, database, live); revoked {
		t.Error("pruned revocation still reported")
	}
}
