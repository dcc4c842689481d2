// Package session defines the caller-identity boundary.  Session
// issuance lives in the surrounding product; the reservation engine
// only requires that each caller presents a stable, unguessable
// credential for the duration of one checkout flow.
package session

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned when a presented credential cannot be verified.
var ErrInvalid = errors.New("invalid session credential")

// Verifier authenticates an opaque session credential and yields the
// stable session id embedded in it.  Implementations must reject
// anything they did not issue.
type Verifier interface {
	Verify(raw string) (sessionID string, err error)
}

// JWTVerifier verifies HS256 tokens issued by the product's session
// service.  The session id travels in the "sid" claim, falling back to
// the standard subject claim for older tokens.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a verifier for tokens signed with the given
// shared secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and extracts the session id.
func (v *JWTVerifier) Verify(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalid
	}
	if sid, ok := claims["sid"].(string); ok && sid != "" {
		return sid, nil
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	return "", ErrInvalid
}
