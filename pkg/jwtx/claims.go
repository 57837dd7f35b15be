package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. Both are overridden from configuration in the
// server, these only exist so a zero value never produces an already expired
// token.
const (
	// DefaultSessionTokenTTL is the lifetime of the token handed out at login
	// and registration. The client keeps this one around.
	DefaultSessionTokenTTL = 7 * 24 * time.Hour

	// DefaultAccessTokenTTL is the lifetime of the short-lived token minted by
	// exchanging a session token, used for privileged calls.
	DefaultAccessTokenTTL = 5 * time.Minute

	// DefaultLeeway is the clock skew tolerated on exp/nbf.
	DefaultLeeway = 5 * time.Second
)

// Kind tags which of the two claim variants a token carries. A token is only
// ever accepted where its own kind is expected.
type Kind string

const (
	// KindSession identifies "who" and is issued by login/register.
	KindSession Kind = "session"

	// KindAccess is minted from a session token and carries the privilege flag.
	KindAccess Kind = "access"
)

// Valid reports whether k is one of the known claim variants.
func (k Kind) Valid() bool {
	return k == KindSession || k == KindAccess
}

func (k Kind) String() string { return string(k) }

// Claims is the closed claim variant shared by session and access tokens.
// Privileged is only ever set on access claims.
type Claims struct {
	jwt.RegisteredClaims

	// Kind of token, see KindSession and KindAccess.
	Kind Kind `json:"knd"`

	// Privileged mirrors the user's admin flag at mint time.
	Privileged bool `json:"acc,omitempty"`
}

// NewSessionClaims builds claims for a session token. No store lookup is
// needed, holding valid credentials one hop earlier is the proof.
func NewSessionClaims(subject, issuer, audience string, ttl time.Duration, now time.Time) Claims {
	if ttl <= 0 {
		ttl = DefaultSessionTokenTTL
	}
	return Claims{
		RegisteredClaims: newRegistered(subject, issuer, audience, ttl, now),
		Kind:             KindSession,
	}
}

// NewAccessClaims builds claims for an access token with the privilege flag
// copied from the user record.
func NewAccessClaims(
	subject string,
	privileged bool,
	issuer, audience string,
	ttl time.Duration,
	now time.Time,
) Claims {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return Claims{
		RegisteredClaims: newRegistered(subject, issuer, audience, ttl, now),
		Kind:             KindAccess,
		Privileged:       privileged,
	}
}

func newRegistered(subject, issuer, audience string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if the expected audience is present.
func (c *Claims) ValidateAudience(expected string) error {
	if expected == "" {
		return nil
	}

	if slices.Contains(c.Audience, expected) {
		return nil
	}

	return ErrAudience
}

// ValidateKind ensures the token is the variant the caller asked for.
func (c *Claims) ValidateKind(expected Kind) error {
	if c.Kind != expected {
		return ErrKindMismatch
	}
	return nil
}

// ValidateExpiryWithLeeway checks exp and nbf against now, allowing a small
// grace period for clock skew. A missing exp is treated as expired.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil || now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
