package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// ErrEmptySecret is returned when a codec is built without key material.
var ErrEmptySecret = errors.New("jwtx: empty signing secret")

// Alg is always HS256, the secret is shared by signer and verifier.
func (c *HS256Codec) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (c *HS256Codec) Sign(claims Claims) (string, error) {
	if !claims.Kind.Valid() {
		return "", ErrInvalidClaim
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}
