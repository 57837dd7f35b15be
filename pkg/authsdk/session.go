package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessRefreshBuffer is how long before expiry a cached access token is
// treated as stale.
const accessRefreshBuffer = 5 * time.Second

// Session holds a session token and mints short-lived access tokens from it
// on demand. Safe for concurrent use.
type Session struct {
	client       *SDKClient
	sessionToken string

	mu            sync.Mutex
	accessToken   string
	accessExpires time.Time
}

// NewSession wraps an existing session token, e.g. one restored from storage.
func (c *SDKClient) NewSession(sessionToken string) *Session {
	return &Session{client: c, sessionToken: sessionToken}
}

// SessionToken returns the long-lived token issued at login or registration.
func (s *Session) SessionToken() string { return s.sessionToken }

// RequestAccess exchanges the session token for a fresh access token and
// caches it. GET /auth/request.
func (s *Session) RequestAccess(ctx context.Context) (string, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/auth/request", nil, s.sessionToken)
	if err != nil {
		return "", err
	}
	token, tokenErr := bearerFrom(resp)
	if err := checkStatus(resp, http.StatusCreated); err != nil {
		return "", err
	}
	if tokenErr != nil {
		return "", tokenErr
	}

	s.mu.Lock()
	s.accessToken = token
	s.accessExpires = unverifiedExpiry(token)
	s.mu.Unlock()

	return token, nil
}

// accessTokenFor returns the cached access token or mints a new one when it
// is missing or about to expire.
func (s *Session) accessTokenFor(ctx context.Context) (string, error) {
	s.mu.Lock()
	token, exp := s.accessToken, s.accessExpires
	s.mu.Unlock()

	if token != "" && time.Now().Add(accessRefreshBuffer).Before(exp) {
		return token, nil
	}
	return s.RequestAccess(ctx)
}

// unverifiedExpiry reads exp from a token without checking its signature.
// The server is the one verifying, we only need to know when to refresh.
func unverifiedExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// GetUserInfo returns the caller's own profile. GET /user/info.
func (s *Session) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/user/info", nil, s.sessionToken)
	if err != nil {
		return nil, err
	}

	var info UserInfo
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListUsers returns every user. Requires a privileged account.
func (s *Session) ListUsers(ctx context.Context) ([]UserInfo, error) {
	token, err := s.accessTokenFor(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/user/all", nil, token)
	if err != nil {
		return nil, err
	}

	var users []UserInfo
	if err := decodeJSON(resp, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the user with the given uuid. Requires a privileged account.
func (s *Session) DeleteUser(ctx context.Context, uuid string) error {
	token, err := s.accessTokenFor(ctx)
	if err != nil {
		return err
	}
	resp, err := s.client.doRequest(ctx, http.MethodDelete, "/user", DeleteUserRequest{UUID: uuid}, token)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

// TestAccess calls the diagnostic GET /auth/test with an access token and
// returns its plaintext answer.
func (s *Session) TestAccess(ctx context.Context) (string, error) {
	token, err := s.accessTokenFor(ctx)
	if err != nil {
		return "", err
	}
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/auth/test", nil, token)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseErrorResponse(resp, body)
	}
	return string(body), nil
}
