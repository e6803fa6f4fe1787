// Package token verifies and mints the platform's access tokens.
//
// The gateway and the auth service share a symmetric HS256 secret. The gateway
// only ever verifies; minting is exposed for the admin CLI and tests, with the
// same claim layout the auth service produces.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed covers tokens that cannot be parsed and tokens missing the
	// required user_id claim.
	ErrMalformed = errors.New("malformed token")

	// ErrSignatureInvalid covers tokens signed with an unknown key or method.
	ErrSignatureInvalid = errors.New("invalid token signature")

	// ErrExpired covers tokens with a valid signature whose exp has passed.
	// This is the only validation failure the gateway recovers from.
	ErrExpired = errors.New("token expired")
)

// Claims is the claim set carried by platform access tokens.
// user_id is mandatory; username and role are optional.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Validator verifies access tokens against the shared secret.
// Validation is deterministic given the secret and the current time; expiry is
// checked with zero clock-skew tolerance.
type Validator struct {
	secret []byte
}

// NewValidator creates a Validator for the given shared secret.
func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

// Validate parses and verifies a raw token string. On success it returns the
// decoded claims; otherwise one of ErrMalformed, ErrSignatureInvalid or
// ErrExpired.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrSignatureInvalid):
			return nil, ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.UserID == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}

// Generator mints access tokens with the same claim layout the auth service
// issues. Used by the admin CLI and by tests.
type Generator struct {
	secret []byte
	ttl    time.Duration
}

// NewGenerator creates a Generator signing with secret and issuing tokens
// valid for ttl.
func NewGenerator(secret string, ttl time.Duration) *Generator {
	return &Generator{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate mints a signed access token for the given identity.
func (g *Generator) Generate(userID, username, role string) (string, error) {
	return g.GenerateAt(userID, username, role, time.Now())
}

// GenerateAt mints a token with issuance anchored at now. Exposed so tests can
// produce already-expired tokens without sleeping.
func (g *Generator) GenerateAt(userID, username, role string, now time.Time) (string, error) {
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "contestapp-auth",
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(g.secret)
}
