package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT of the expected kind and gives you back the claims
// if it's legit.
type Verifier interface {
	Verify(token string, kind Kind) (Claims, error)
}

// ErrInvalidToken wraps every verification failure, callers that only care
// about "valid or not" can match on it alone.
var ErrInvalidToken = errors.New("jwtx: invalid token")

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrKindMismatch = errors.New("jwtx: token kind mismatch")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Codec signs and verifies both claim variants with one shared secret.
// It is immutable after construction and safe for concurrent use.
type HS256Codec struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// CodecOption tweaks an HS256Codec at construction.
type CodecOption func(*HS256Codec)

// WithLeeway overrides DefaultLeeway.
func WithLeeway(d time.Duration) CodecOption {
	return func(c *HS256Codec) { c.leeway = d }
}

// WithClock replaces time.Now, handy for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *HS256Codec) { c.now = now }
}

// NewHS256Codec builds a codec bound to the configured issuer and audience.
func NewHS256Codec(secret []byte, issuer, audience string, opts ...CodecOption) (*HS256Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	c := &HS256Codec{
		secret:   append([]byte(nil), secret...),
		issuer:   issuer,
		audience: audience,
		leeway:   DefaultLeeway,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issuer returns the issuer stamped on and required from every token.
func (c *HS256Codec) Issuer() string { return c.issuer }

// Audience returns the audience stamped on and required from every token.
func (c *HS256Codec) Audience() string { return c.audience }

// Verify validates the JWT string and returns its parsed Claims. Any failure
// wraps ErrInvalidToken together with the specific cause.
func (c *HS256Codec) Verify(tokenStr string, kind Kind) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(), // checked below against our own clock
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, invalid(classify(err))
	}
	if !token.Valid {
		return Claims{}, invalid(ErrInvalidClaim)
	}

	// Now check all the claim requirements
	if err := claims.ValidateKind(kind); err != nil {
		return Claims{}, invalid(err)
	}
	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, invalid(err)
	}
	if err := claims.ValidateAudience(c.audience); err != nil {
		return Claims{}, invalid(err)
	}
	if err := claims.ValidateExpiryWithLeeway(c.now(), c.leeway); err != nil {
		return Claims{}, invalid(err)
	}
	if claims.Subject == "" {
		return Claims{}, invalid(ErrInvalidClaim)
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}

func invalid(cause error) error {
	return fmt.Errorf("%w: %w", ErrInvalidToken, cause)
}
