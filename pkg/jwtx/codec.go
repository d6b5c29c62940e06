// Package jwtx signs and verifies the service's access and refresh tokens.
//
// Both token classes are HS256 JWTs carrying the same identity claims but
// signed with distinct secrets and lifetimes, so possession of one class
// never implies possession of the other.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/showreelhq/showreel/pkg/idx"
)

const (
	// DefaultAccessExpiry is the access token lifetime spec. Short-lived;
	// API calls re-authenticate via refresh once it lapses.
	DefaultAccessExpiry = "15m"

	// DefaultRefreshExpiry is the refresh token lifetime spec.
	DefaultRefreshExpiry = "7d"
)

var (
	// ErrMissingSecret reports an empty signing secret. This is a startup
	// configuration failure and must never surface per-request.
	ErrMissingSecret = errors.New("jwtx: signing secret not configured")

	// ErrTokenInvalid covers bad signatures, wrong algorithms and expired
	// tokens alike; callers get no detail about which check failed.
	ErrTokenInvalid = errors.New("jwtx: invalid token")
)

// Claims are the identity claims embedded in both token classes.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Identity is the minimal user shape the codec signs over.
type Identity struct {
	ID    string
	Email string
	Role  string
}

// Codec signs and verifies token pairs. Construct with New so that missing
// secrets are caught at startup.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// New builds a Codec from the two signing secrets and lifetime specs in the
// <integer><unit> grammar (see ParseExpirySpec). It fails with
// ErrMissingSecret when either secret is empty.
func New(issuer, accessSecret, refreshSecret, accessExpiry, refreshExpiry string) (*Codec, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrMissingSecret
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		Issuer:        issuer,
		AccessTTL:     ParseExpirySpec(accessExpiry),
		RefreshTTL:    ParseExpirySpec(refreshExpiry),
	}, nil
}

// SignAccess issues a short-lived access token for the identity.
func (c *Codec) SignAccess(id Identity, now time.Time) (string, error) {
	return c.sign(id, now, c.AccessTTL, c.accessSecret)
}

// SignRefresh issues a refresh token for the identity.
func (c *Codec) SignRefresh(id Identity, now time.Time) (string, error) {
	return c.sign(id, now, c.RefreshTTL, c.refreshSecret)
}

// sign stamps a fresh ULID as the jti so tokens minted for the same
// identity within one second still fingerprint uniquely.
func (c *Codec) sign(id Identity, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.New().String(),
			Issuer:    c.Issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: id.Email,
		Role:  id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access token and returns its claims.
func (c *Codec) VerifyAccess(token string) (Claims, error) {
	return c.verify(token, c.accessSecret)
}

// VerifyRefresh validates a refresh token's signature and expiry and
// returns its claims.
func (c *Codec) VerifyRefresh(token string) (Claims, error) {
	return c.verify(token, c.refreshSecret)
}

func (c *Codec) verify(token string, secret []byte) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
