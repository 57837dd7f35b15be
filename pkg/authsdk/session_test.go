package authsdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(ttl time.Duration) string {
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}).SignedString([]byte("k"))
	return tok
}

// fakeServer answers /auth/request with an access token of accessTTL and
// counts how many were minted.
func fakeServer(t *testing.T, accessTTL time.Duration) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var minted atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/request", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer session-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		minted.Add(1)
		w.Header().Set("Authorization", "Bearer "+signedToken(accessTTL))
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /user/all", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"uuid":"u","username":"alice","email":"a@x.com","is_admin":true}]`))
	})
	mux.HandleFunc("DELETE /user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error_type":"AccessDenied","message":"access denied"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &minted
}

func TestSession_CachesAccessToken(t *testing.T) {
	srv, minted := fakeServer(t, time.Minute)
	session := NewSDKClient(srv.URL).NewSession("session-token")
	ctx := context.Background()

	for range 3 {
		users, err := session.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
	}
	require.EqualValues(t, 1, minted.Load())
}

func TestSession_RefreshesNearExpiry(t *testing.T) {
	srv, minted := fakeServer(t, 2*time.Second)
	session := NewSDKClient(srv.URL).NewSession("session-token")
	ctx := context.Background()

	_, err := session.ListUsers(ctx)
	require.NoError(t, err)
	_, err = session.ListUsers(ctx)
	require.NoError(t, err)

	require.EqualValues(t, 2, minted.Load())
}

func TestSession_TypedErrors(t *testing.T) {
	srv, _ := fakeServer(t, time.Minute)
	session := NewSDKClient(srv.URL).NewSession("session-token")

	err := session.DeleteUser(context.Background(), "someone")
	require.ErrorIs(t, err, ErrAccessDenied)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestParseErrorResponse_PlainBody(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests}
	err := parseErrorResponse(resp, []byte("slow down\n"))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "TooManyRequests", apiErr.Type)
	require.Equal(t, "slow down", apiErr.Message)
}
