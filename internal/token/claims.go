// Package token inspects backend-issued access tokens without verifying them.
//
// The identity backend is the enforcement point for token validity; the
// client only needs claim contents (identity id, expiry, assurance level) to
// enrich its local session view, so signature verification is deliberately
// skipped here.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AAL2 is the assurance level the backend stamps on sessions that already
// satisfied a second factor.
const AAL2 = "aal2"

// Claims carries the subset of access-token claims the synchronizer reads.
type Claims struct {
	IdentityID     string
	Email          string
	AssuranceLevel string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

type accessClaims struct {
	Email          string `json:"email,omitempty"`
	AssuranceLevel string `json:"aal,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes the claims of an access token without signature
// verification. Callers treat failures as "no enrichment available".
func Inspect(accessToken string) (*Claims, error) {
	if accessToken == "" {
		return nil, errors.New("empty access token")
	}

	var claims accessClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return nil, err
	}

	out := &Claims{
		IdentityID:     claims.Subject,
		Email:          claims.Email,
		AssuranceLevel: claims.AssuranceLevel,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
