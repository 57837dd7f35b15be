package service

import (
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/pkg/jwtx"
)

// TokenCodec is the signing half of jwtx.HS256Codec plus the identity it
// stamps on tokens.
type TokenCodec interface {
	jwtx.Signer
	Issuer() string
	Audience() string
}

// TokenService builds and signs both claim variants.
type TokenService struct {
	Codec      TokenCodec
	SessionTTL time.Duration
	AccessTTL  time.Duration
	Now        func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NewSession signs a session token for uuid. It needs no store lookup, the
// caller has just proven the credentials.
func (s *TokenService) NewSession(uuid string) (string, error) {
	claims := jwtx.NewSessionClaims(uuid, s.Codec.Issuer(), s.Codec.Audience(), s.SessionTTL, s.now())
	return s.sign(claims)
}

// NewAccess signs an access token carrying u's current admin flag.
func (s *TokenService) NewAccess(u domain.User) (string, error) {
	claims := jwtx.NewAccessClaims(u.UUID, u.IsAdmin, s.Codec.Issuer(), s.Codec.Audience(), s.AccessTTL, s.now())
	return s.sign(claims)
}

func (s *TokenService) sign(claims jwtx.Claims) (string, error) {
	token, err := s.Codec.Sign(claims)
	if err != nil {
		return "", ErrTokenCreation
	}
	return token, nil
}
