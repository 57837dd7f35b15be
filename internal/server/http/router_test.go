package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/stackplate/internal/server/chat"
	serverhttp "github.com/aussiebroadwan/stackplate/internal/server/http"
	"github.com/aussiebroadwan/stackplate/internal/server/mail/mailtest"
	"github.com/aussiebroadwan/stackplate/internal/server/resetkeys"
	"github.com/aussiebroadwan/stackplate/internal/server/service"
	"github.com/aussiebroadwan/stackplate/internal/server/store/drivers/sqlite"
	"github.com/aussiebroadwan/stackplate/pkg/authsdk"
	"github.com/aussiebroadwan/stackplate/pkg/cryptox"
	"github.com/aussiebroadwan/stackplate/pkg/httpx"
	"github.com/aussiebroadwan/stackplate/pkg/jwtx"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"
)

type testEnv struct {
	srv    *httptest.Server
	client *authsdk.SDKClient
	db     *sqlite.Store
	codec  *jwtx.HS256Codec
	mailer *mailtest.Recorder
	hub    *chat.Hub
}

func generousLimits() httpx.RateLimitProfiles {
	l := httpx.RateLimitConfig{RequestsPerWindow: 10_000, Window: time.Minute, Burst: 10_000}
	return httpx.RateLimitProfiles{Strict: l, Moderate: l, Lenient: l, Public: l}
}

func newTestEnv(t *testing.T, limits httpx.RateLimitProfiles) *testEnv {
	t.Helper()

	db, err := sqlite.NewStore(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ApplyMigrations())

	codec, err := jwtx.NewHS256Codec([]byte("e2e-secret"), "Acme", "acme.test")
	require.NoError(t, err)

	logger := slogx.NewDiscard()
	keys := resetkeys.NewMemoryStore()
	mailer := &mailtest.Recorder{}

	router := serverhttp.NewRouter(codec, limits, "test", db, keys, []string{"https://app.acme.test"}, logger)
	router.AuthService = &service.AuthService{
		Store: db,
		Tokens: &service.TokenService{
			Codec:      codec,
			SessionTTL: time.Hour,
			AccessTTL:  time.Minute,
		},
		Hasher:      cryptox.NewPasswordHasher(""),
		ResetKeys:   keys,
		Mailer:      mailer,
		PublicURL:   "https://app.acme.test",
		Company:     "Acme",
		AdminEmails: []string{"root@acme.test"},
	}
	router.UserService = &service.UserService{Store: db}
	router.ChatHub = chat.NewHub(chat.Config{}, logger)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(router.ChatHub.Close)

	return &testEnv{
		srv:    srv,
		client: authsdk.NewSDKClient(srv.URL),
		db:     db,
		codec:  codec,
		mailer: mailer,
		hub:    router.ChatHub,
	}
}

func (e *testEnv) resetKey(t *testing.T) string {
	t.Helper()
	msg, ok := e.mailer.Last()
	require.True(t, ok, "no reset mail sent")
	link, err := url.Parse(msg.Link)
	require.NoError(t, err)
	return link.Query().Get("key")
}

func (e *testEnv) do(t *testing.T, method, path, body string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func requireAPIError(t *testing.T, err error, want *authsdk.APIError) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *authsdk.APIError, got %v", err)
	require.Equal(t, want.Type, apiErr.Type)
	require.Equal(t, want.StatusCode, apiErr.StatusCode)
}

func TestPasswordResetScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, generousLimits())

	session, info, err := env.client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Password: "p1", Email: "a@x.com"})
	require.NoError(t, err)
	require.Equal(t, "alice", info.Username)
	require.Equal(t, "a@x.com", info.Email)
	require.False(t, info.IsAdmin)

	claims, err := env.codec.Verify(session.SessionToken(), jwtx.KindSession)
	require.NoError(t, err)
	require.Equal(t, info.UUID, claims.Subject)

	_, _, err = env.client.Login(ctx, authsdk.LoginRequest{Username: "alice", Password: "wrong"})
	requireAPIError(t, err, authsdk.ErrWrongCredentials)

	require.NoError(t, env.client.RequestReset(ctx, "a@x.com"))
	key := env.resetKey(t)
	require.NoError(t, env.client.ResetPassword(ctx, key, authsdk.ResetPasswordRequest{Email: "a@x.com", Password: "p2"}))

	_, info2, err := env.client.Login(ctx, authsdk.LoginRequest{Username: "alice", Password: "p2"})
	require.NoError(t, err)
	require.Equal(t, info.UUID, info2.UUID)

	_, _, err = env.client.Login(ctx, authsdk.LoginRequest{Username: "alice", Password: "p1"})
	requireAPIError(t, err, authsdk.ErrWrongCredentials)

	// the key was consumed
	err = env.client.ResetPassword(ctx, key, authsdk.ResetPasswordRequest{Email: "a@x.com", Password: "p3"})
	requireAPIError(t, err, authsdk.ErrResetLinkInvalid)
}

func TestReset_Errors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, generousLimits())
	_, _, err := env.client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Password: "p1", Email: "a@x.com"})
	require.NoError(t, err)
	_, _, err = env.client.Register(ctx, authsdk.RegisterRequest{Username: "bob", Password: "p1", Email: "b@x.com"})
	require.NoError(t, err)

	requireAPIError(t, env.client.RequestReset(ctx, "ghost@x.com"), authsdk.ErrUserDoesNotExist)
	requireAPIError(t, env.client.RequestReset(ctx, "not-an-email"), authsdk.ErrInvalidEmail)

	require.NoError(t, env.client.RequestReset(ctx, "a@x.com"))
	key := env.resetKey(t)

	err = env.client.ResetPassword(ctx, key, authsdk.ResetPasswordRequest{Email: "b@x.com", Password: "x"})
	requireAPIError(t, err, authsdk.ErrResetLinkInvalid)

	err = env.client.ResetPassword(ctx, "bogus", authsdk.ResetPasswordRequest{Email: "a@x.com", Password: "x"})
	requireAPIError(t, err, authsdk.ErrResetLinkInvalid)

	env.mailer.Err = errors.New("smtp down")
	requireAPIError(t, env.client.RequestReset(ctx, "a@x.com"), authsdk.ErrServerError)
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, generousLimits())

	_, _, err := env.client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Password: "p1", Email: "a@x.com"})
	require.NoError(t, err)

	_, _, err = env.client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Password: "p1", Email: "other@x.com"})
	requireAPIError(t, err, authsdk.ErrUserAlreadyExists)

	_, _, err = env.client.Register(ctx, authsdk.RegisterRequest{Username: "bob", Password: "p1"})
	requireAPIError(t, err, authsdk.ErrMissingFields)

	_, _, err = env.client.Register(ctx, authsdk.RegisterRequest{Username: "bob", Password: "p1", Email: "bob"})
	requireAPIError(t, err, authsdk.ErrInvalidEmail)

	_, _, err = env.client.Register(ctx, authsdk.RegisterRequest{Username: "a@x.com", Password: "p1", Email: "m@x.com"})
	requireAPIError(t, err, authsdk.ErrInvalidUsername)

	resp := env.do(t, http.MethodPost, "/auth/register", "{not json", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, _, err = env.client.Login(ctx, authsdk.LoginRequest{Username: "nobody", Password: "p1"})
	requireAPIError(t, err, authsdk.ErrUserDoesNotExist)
}

func TestTokenExchangeAndAdminRoutes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, generousLimits())

	alice, aliceInfo, err := env.client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Password: "p1", Email: "a@x.com"})
	require.NoError(t, err)
	root, rootInfo, err := env.client.Register(ctx, authsdk.RegisterRequest{Username: "root", Password: "p1", Email: "root@acme.test"})
	require.NoError(t, err)
	require.True(t, rootInfo.IsAdmin)

	access, err := alice.RequestAccess(ctx)
	require.NoError(t, err)
	claims, err := env.codec.Verify(access, jwtx.KindAccess)
	require.NoError(t, err)
	require.Equal(t, aliceInfo.UUID, claims.Subject)
	require.False(t, claims.Privileged)

	msg, err := alice.TestAccess(ctx)
	require.NoError(t, err)
	require.Contains(t, msg, aliceInfo.UUID)

	me, err := alice.GetUserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, *aliceInfo, *me)

	_, err = alice.ListUsers(ctx)
	requireAPIError(t, err, authsdk.ErrAccessDenied)

	users, err := root.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	requireAPIError(t, root.DeleteUser(ctx, "no-such-uuid"), authsdk.ErrUserDoesNotExist)
	requireAPIError(t, alice.DeleteUser(ctx, rootInfo.UUID), authsdk.ErrAccessDenied)
	require.NoError(t, root.DeleteUser(ctx, aliceInfo.UUID))

	// a deleted user can't mint access tokens any more
	_, err = alice.RequestAccess(ctx)
	requireAPIError(t, err, authsdk.ErrAccessDenied)
}

func TestAuthGuard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, generousLimits())

	session, info, err := env.client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Password: "p1", Email: "a@x.com"})
	require.NoError(t, err)
	access, err := session.RequestAccess(ctx)
	require.NoError(t, err)

	bearer := func(tok string) http.Header { return http.Header{"Authorization": {"Bearer " + tok}} }

	cases := []struct {
		name   string
		method string
		path   string
		header http.Header
	}{
		{"no token", http.MethodGet, "/user/info", nil},
		{"spoofed uuid header", http.MethodGet, "/user/info", http.Header{"User-Uuid": {info.UUID}}},
		{"garbage token", http.MethodGet, "/user/info", bearer("x.y.z")},
		{"access token where session expected", http.MethodGet, "/user/info", bearer(access)},
		{"session token where access expected", http.MethodGet, "/auth/test", bearer(session.SessionToken())},
		{"session token on admin route", http.MethodGet, "/user/all", bearer(session.SessionToken())},
		{"access token on exchange", http.MethodGet, "/auth/request", bearer(access)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, tc.method, tc.path, "", tc.header)
			require.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}

	t.Run("expired session token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		tok, err := env.codec.Sign(jwtx.NewSessionClaims(info.UUID, "Acme", "acme.test", time.Hour, past))
		require.NoError(t, err)

		_, err = env.client.NewSession(tok).GetUserInfo(ctx)
		requireAPIError(t, err, authsdk.ErrInvalidToken)
	})
}

func TestRateLimit_Login(t *testing.T) {
	ctx := context.Background()
	limits := generousLimits()
	limits.Strict = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	env := newTestEnv(t, limits)

	for range 2 {
		_, _, err := env.client.Login(ctx, authsdk.LoginRequest{Username: "alice", Password: "p"})
		requireAPIError(t, err, authsdk.ErrUserDoesNotExist)
	}

	_, _, err := env.client.Login(ctx, authsdk.LoginRequest{Username: "alice", Password: "p"})
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, httpx.ErrTypeTooManyRequests, apiErr.Type)

	// another account from the same address has its own budget
	_, _, err = env.client.Login(ctx, authsdk.LoginRequest{Username: "bob", Password: "p"})
	requireAPIError(t, err, authsdk.ErrUserDoesNotExist)
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, generousLimits())

	live, err := env.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, serverhttp.ServiceName, live.Service)
	require.Equal(t, "test", live.Version)

	ready, err := env.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.ResetStore)
	require.Equal(t, serverhttp.ServiceName, ready.Service)

	require.NoError(t, env.db.Close())
	_, err = env.client.GetReadiness(ctx)
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, generousLimits())

	resp := env.do(t, http.MethodOptions, "/auth/login", "", http.Header{
		"Origin":                        {"https://app.acme.test"},
		"Access-Control-Request-Method": {"POST"},
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "https://app.acme.test", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "Authorization")

	resp = env.do(t, http.MethodGet, "/livez", "", http.Header{"Origin": {"https://evil.test"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, generousLimits())

	resp := env.do(t, http.MethodGet, "/livez", "", nil)
	require.NotEmpty(t, resp.Header.Get(slogx.RequestIDHeader))
}

func TestChatThroughRouter(t *testing.T) {
	env := newTestEnv(t, generousLimits())

	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	a, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	b, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	// the hub registers a client right after the handshake is written
	require.Eventually(t, func() bool { return env.hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("hi all")))
	for _, c := range []*websocket.Conn{a, b} {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := c.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, "hi all", string(msg))
	}
}
