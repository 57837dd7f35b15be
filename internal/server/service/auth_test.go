package service_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/internal/server/mail/mailtest"
	"github.com/aussiebroadwan/stackplate/internal/server/resetkeys"
	"github.com/aussiebroadwan/stackplate/internal/server/service"
	"github.com/aussiebroadwan/stackplate/internal/server/store"
	"github.com/aussiebroadwan/stackplate/internal/server/store/drivers/sqlite"
	"github.com/aussiebroadwan/stackplate/internal/server/store/storetest"
	"github.com/aussiebroadwan/stackplate/pkg/cryptox"
	"github.com/aussiebroadwan/stackplate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	auth   *service.AuthService
	users  *service.UserService
	codec  *jwtx.HS256Codec
	store  store.Store
	keys   *resetkeys.MemoryStore
	mailer *mailtest.Recorder
	clock  *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.NewStore(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ApplyMigrations())

	clk := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	codec, err := jwtx.NewHS256Codec([]byte("test-secret"), "Acme", "acme.test", jwtx.WithClock(clk.Now))
	require.NoError(t, err)

	f := &fixture{
		codec:  codec,
		store:  db,
		keys:   resetkeys.NewMemoryStore(),
		mailer: &mailtest.Recorder{},
		clock:  clk,
	}
	f.auth = &service.AuthService{
		Store: db,
		Tokens: &service.TokenService{
			Codec:      codec,
			SessionTTL: time.Hour,
			AccessTTL:  time.Minute,
			Now:        clk.Now,
		},
		Hasher:      cryptox.NewPasswordHasher("pepper"),
		ResetKeys:   f.keys,
		Mailer:      f.mailer,
		PublicURL:   "https://app.acme.test/",
		Company:     "Acme",
		AdminEmails: []string{"Root@Acme.test"},
		Now:         clk.Now,
	}
	f.users = &service.UserService{Store: db}
	return f
}

func (f *fixture) register(t *testing.T, username, password, email string) domain.User {
	t.Helper()
	u, _, err := f.auth.Register(context.Background(), service.RegisterInput{
		Username: username,
		Password: password,
		Email:    email,
	})
	require.NoError(t, err)
	return u
}

// requestKey runs the reset request and pulls the key out of the mailed link.
func (f *fixture) requestKey(t *testing.T, email string) string {
	t.Helper()
	require.NoError(t, f.auth.RequestReset(context.Background(), email))

	msg, ok := f.mailer.Last()
	require.True(t, ok)
	link, err := url.Parse(msg.Link)
	require.NoError(t, err)
	key := link.Query().Get("key")
	require.Len(t, key, cryptox.ResetKeyLength)
	return key
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, token, err := f.auth.Register(ctx, service.RegisterInput{
		Username: "alice",
		Password: "p1",
		Email:    " A@X.com ",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "a@x.com", user.Email)
	require.False(t, user.IsAdmin)
	require.NotEmpty(t, user.UUID)
	require.NotEqual(t, "p1", user.PasswordHash)

	claims, err := f.codec.Verify(token, jwtx.KindSession)
	require.NoError(t, err)
	require.Equal(t, user.UUID, claims.Subject)

	_, _, err = f.auth.Login(ctx, "alice", "p1")
	require.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name string
		in   service.RegisterInput
		want error
	}{
		{"missing username", service.RegisterInput{Password: "p", Email: "a@x.com"}, service.ErrMissingFields},
		{"missing password", service.RegisterInput{Username: "a", Email: "a@x.com"}, service.ErrMissingFields},
		{"missing email", service.RegisterInput{Username: "a", Password: "p"}, service.ErrMissingFields},
		{"bad email", service.RegisterInput{Username: "a", Password: "p", Email: "not-an-email"}, service.ErrInvalidEmail},
		{"username with @", service.RegisterInput{Username: "Ann@Work", Password: "p", Email: "ann@x.com"}, service.ErrInvalidUsername},
		{"username shaped like an email", service.RegisterInput{Username: "v@x.com", Password: "p", Email: "w@x.com"}, service.ErrInvalidUsername},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.auth.Register(ctx, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "p1", "a@x.com")

	_, _, err := f.auth.Register(ctx, service.RegisterInput{Username: "alice", Password: "p2", Email: "other@x.com"})
	require.ErrorIs(t, err, service.ErrUserAlreadyExists)

	_, _, err = f.auth.Register(ctx, service.RegisterInput{Username: "bob", Password: "p2", Email: "A@x.com"})
	require.ErrorIs(t, err, service.ErrUserAlreadyExists)
}

func TestRegister_AdminEmail(t *testing.T) {
	f := newFixture(t)
	root := f.register(t, "root", "pw", "root@acme.test")
	require.True(t, root.IsAdmin)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice", "p1", "a@x.com")

	t.Run("by email", func(t *testing.T) {
		user, token, err := f.auth.Login(ctx, "A@X.COM", "p1")
		require.NoError(t, err)
		require.Equal(t, alice.UUID, user.UUID)
		require.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "alice", "nope")
		require.ErrorIs(t, err, service.ErrWrongCredentials)
	})

	t.Run("empty fields", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "", "p1")
		require.ErrorIs(t, err, service.ErrWrongCredentials)
		_, _, err = f.auth.Login(ctx, "alice", "")
		require.ErrorIs(t, err, service.ErrWrongCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "mallory", "p1")
		require.ErrorIs(t, err, service.ErrUserDoesNotExist)
	})

	t.Run("username is case sensitive", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "Alice", "p1")
		require.ErrorIs(t, err, service.ErrUserDoesNotExist)
	})
}

func TestLogin_MixedCaseUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.register(t, "Ann.Work", "p1", "ann@x.com")

	user, _, err := f.auth.Login(ctx, "Ann.Work", "p1")
	require.NoError(t, err)
	require.Equal(t, ann.UUID, user.UUID)
}

func TestLogin_EmailCannotBeShadowedByUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	victim := f.register(t, "victim", "victim-pass", "v@x.com")

	_, _, err := f.auth.Register(ctx, service.RegisterInput{Username: "v@x.com", Password: "attacker-pass", Email: "m@x.com"})
	require.ErrorIs(t, err, service.ErrInvalidUsername)

	user, _, err := f.auth.Login(ctx, "v@x.com", "victim-pass")
	require.NoError(t, err)
	require.Equal(t, victim.UUID, user.UUID)
}

func TestLogin_EmailLookupIgnoresUsernames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	victim := f.register(t, "victim", "victim-pass", "v@x.com")

	// A row written past the service, the login still resolves by email.
	squatter := storetest.NewUser("v@x.com", "m@x.com")
	_, err := f.store.Users().CreateUser(ctx, squatter)
	require.NoError(t, err)

	user, _, err := f.auth.Login(ctx, "v@x.com", "victim-pass")
	require.NoError(t, err)
	require.Equal(t, victim.UUID, user.UUID)
}

func TestRequestAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice", "p1", "a@x.com")
	root := f.register(t, "root", "p1", "root@acme.test")

	token, err := f.auth.RequestAccess(ctx, alice.UUID)
	require.NoError(t, err)
	claims, err := f.codec.Verify(token, jwtx.KindAccess)
	require.NoError(t, err)
	require.Equal(t, alice.UUID, claims.Subject)
	require.False(t, claims.Privileged)

	token, err = f.auth.RequestAccess(ctx, root.UUID)
	require.NoError(t, err)
	claims, err = f.codec.Verify(token, jwtx.KindAccess)
	require.NoError(t, err)
	require.True(t, claims.Privileged)

	// access tokens are short lived
	f.clock.Advance(2 * time.Minute)
	_, err = f.codec.Verify(token, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)

	require.NoError(t, f.users.DeleteUser(ctx, alice.UUID))
	_, err = f.auth.RequestAccess(ctx, alice.UUID)
	require.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestResetPassword_Window(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted just inside the window", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice", "p1", "a@x.com")
		key := f.requestKey(t, "a@x.com")

		f.clock.Advance(23*time.Hour + 59*time.Minute)
		require.NoError(t, f.auth.ResetPassword(ctx, key, "a@x.com", "p2"))

		_, _, err := f.auth.Login(ctx, "alice", "p2")
		require.NoError(t, err)
		_, _, err = f.auth.Login(ctx, "alice", "p1")
		require.ErrorIs(t, err, service.ErrWrongCredentials)
	})

	t.Run("rejected just outside the window", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice", "p1", "a@x.com")
		key := f.requestKey(t, "a@x.com")

		f.clock.Advance(24*time.Hour + time.Minute)
		err := f.auth.ResetPassword(ctx, key, "a@x.com", "p2")
		require.ErrorIs(t, err, service.ErrResetLinkInvalid)

		_, _, err = f.auth.Login(ctx, "alice", "p1")
		require.NoError(t, err)
	})
}

func TestResetPassword_EmailMustMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "p1", "a@x.com")
	f.register(t, "bob", "p1", "b@x.com")
	key := f.requestKey(t, "a@x.com")

	err := f.auth.ResetPassword(ctx, key, "b@x.com", "p2")
	require.ErrorIs(t, err, service.ErrResetLinkInvalid)

	// the key is still good for its owner
	require.NoError(t, f.auth.ResetPassword(ctx, key, "a@x.com", "p2"))
}

func TestResetPassword_SingleUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "p1", "a@x.com")
	key := f.requestKey(t, "a@x.com")

	require.NoError(t, f.auth.ResetPassword(ctx, key, "a@x.com", "p2"))
	require.ErrorIs(t, f.auth.ResetPassword(ctx, key, "a@x.com", "p3"), service.ErrResetLinkInvalid)
	require.Zero(t, f.keys.Len())
}

func TestResetPassword_ConcurrentRedeemHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "p1", "a@x.com")
	key := f.requestKey(t, "a@x.com")

	var ok, invalid atomic.Int32
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.auth.ResetPassword(ctx, key, "a@x.com", "p2")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, service.ErrResetLinkInvalid):
				invalid.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, ok.Load())
	require.EqualValues(t, 3, invalid.Load())
}

func TestResetPassword_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "p1", "a@x.com")

	require.ErrorIs(t, f.auth.ResetPassword(ctx, "nope", "ghost@x.com", "p2"), service.ErrUserDoesNotExist)
	require.ErrorIs(t, f.auth.ResetPassword(ctx, "nope", "a@x.com", "p2"), service.ErrResetLinkInvalid)
	require.ErrorIs(t, f.auth.ResetPassword(ctx, "", "a@x.com", "p2"), service.ErrMissingFields)
}

type failingUsers struct {
	store.Users
}

func (failingUsers) UpdatePasswordHash(context.Context, string, string) error {
	return errors.New("disk on fire")
}

type failingStore struct {
	store.Store
}

func (s failingStore) Users() store.Users { return failingUsers{s.Store.Users()} }

func TestResetPassword_UpdateFailureRestoresKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "p1", "a@x.com")
	key := f.requestKey(t, "a@x.com")

	f.auth.Store = failingStore{f.store}
	err := f.auth.ResetPassword(ctx, key, "a@x.com", "p2")
	require.Error(t, err)
	require.NotErrorIs(t, err, service.ErrResetLinkInvalid)
	require.Equal(t, 1, f.keys.Len())

	f.auth.Store = f.store
	require.NoError(t, f.auth.ResetPassword(ctx, key, "a@x.com", "p2"))
}

func TestRequestReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "p1", "a@x.com")

	t.Run("mails a link", func(t *testing.T) {
		require.NoError(t, f.auth.RequestReset(ctx, "A@x.com"))
		msg, ok := f.mailer.Last()
		require.True(t, ok)
		require.Equal(t, "a@x.com", msg.To)
		require.Equal(t, "alice", msg.Username)
		require.Equal(t, domain.DefaultResetWindow, msg.Valid)
		require.Contains(t, msg.Link, "https://app.acme.test/reset?email=a%40x.com&key=")
	})

	t.Run("invalid email", func(t *testing.T) {
		require.ErrorIs(t, f.auth.RequestReset(ctx, "nope"), service.ErrInvalidEmail)
	})

	t.Run("unknown email", func(t *testing.T) {
		require.ErrorIs(t, f.auth.RequestReset(ctx, "ghost@x.com"), service.ErrUserDoesNotExist)
	})

	t.Run("mail failure keeps the key", func(t *testing.T) {
		before := f.keys.Len()
		sent := len(f.mailer.Sent())
		f.mailer.Err = errors.New("smtp down")
		defer func() { f.mailer.Err = nil }()

		err := f.auth.RequestReset(ctx, "a@x.com")
		require.Error(t, err)
		require.Equal(t, before+1, f.keys.Len())
		require.Len(t, f.mailer.Sent(), sent)
	})
}

func TestResetLink(t *testing.T) {
	require.Equal(t,
		"https://app.test/reset?email=a%2Bb%40x.com&key=k1",
		service.ResetLink("https://app.test/", "a+b@x.com", "k1"),
	)
}
