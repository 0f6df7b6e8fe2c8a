package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-client/internal/domain"
)

func signedToken(t *testing.T, email, role string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestDecodeTokenValid(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	raw := signedToken(t, "user@example.com", "ADMIN", exp)

	claims, err := DecodeToken(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}
	if claims.DerivedRole() != domain.RoleAdmin {
		t.Fatalf("expected ADMIN role, got %s", claims.DerivedRole())
	}
	if claims.Expired(time.Now()) {
		t.Fatalf("token should not be expired")
	}
}

func TestDecodeTokenExpired(t *testing.T) {
	raw := signedToken(t, "user@example.com", "USER", time.Now().Add(-time.Minute))

	claims, err := DecodeToken(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claims.Expired(time.Now()) {
		t.Fatalf("expected token to be expired")
	}
}

func TestDecodeTokenMalformed(t *testing.T) {
	_, err := DecodeToken("not-a-jwt")
	var decodeErr *domain.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestDecodeTokenMissingRoleDefaultsToUser(t *testing.T) {
	raw := signedToken(t, "user@example.com", "", time.Now().Add(time.Hour))

	claims, err := DecodeToken(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.DerivedRole() != domain.RoleUser {
		t.Fatalf("expected USER default, got %s", claims.DerivedRole())
	}
}

func TestClaimsWithoutExpAreExpired(t *testing.T) {
	claims := Claims{}
	if !claims.Expired(time.Now()) {
		t.Fatalf("claims without exp must count as expired")
	}
}
