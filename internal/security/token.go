package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-client/internal/domain"
)

// Claims is the payload the storefront backend embeds in its bearer tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// DecodeToken extracts the claims from a bearer token without verifying the
// signature. The client holds no signing secret; the backend re-verifies every
// request, so the decoded payload is only used to derive display state (role,
// expiry). Malformed input yields a DecodeError.
func DecodeToken(raw string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	var claims Claims
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return Claims{}, &domain.DecodeError{Reason: err.Error()}
	}
	return claims, nil
}

// Expired reports whether the token's exp claim is in the past. Tokens
// without an exp claim are treated as expired: the backend always sets one,
// so its absence means the credential is not one of ours.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return now.After(c.ExpiresAt.Time)
}

// DerivedRole returns the role claim, defaulting to USER when absent.
func (c Claims) DerivedRole() domain.Role {
	switch c.Role {
	case string(domain.RoleAdmin):
		return domain.RoleAdmin
	default:
		return domain.RoleUser
	}
}
