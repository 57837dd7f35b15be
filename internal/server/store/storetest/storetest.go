// Package storetest holds the behaviour every store driver must share.
package storetest

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/internal/server/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewUser returns a user with a fresh uuid, ready for CreateUser.
func NewUser(username, email string) domain.User {
	return domain.User{
		UUID:         uuid.NewString(),
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Email:        email,
	}
}

// RunUsers exercises the Users repository of a freshly migrated, empty store.
func RunUsers(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	users := s.Users()

	alice, err := users.CreateUser(ctx, NewUser("alice", "a@x.com"))
	require.NoError(t, err)
	require.NotZero(t, alice.ID)
	require.False(t, alice.CreatedAt.IsZero())

	bob := NewUser("bob", "b@x.com")
	bob.IsAdmin = true
	bob, err = users.CreateUser(ctx, bob)
	require.NoError(t, err)
	require.Greater(t, bob.ID, alice.ID)

	t.Run("duplicates rejected", func(t *testing.T) {
		_, err := users.CreateUser(ctx, NewUser("alice", "other@x.com"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = users.CreateUser(ctx, NewUser("alice2", "a@x.com"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		dup := NewUser("carol", "c@x.com")
		dup.UUID = alice.UUID
		_, err = users.CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := users.GetUserByUUID(ctx, alice.UUID)
		require.NoError(t, err)
		require.Equal(t, alice.Info(), got.Info())
		require.Equal(t, alice.PasswordHash, got.PasswordHash)

		got, err = users.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice.UUID, got.UUID)

		got, err = users.GetUserByEmail(ctx, "b@x.com")
		require.NoError(t, err)
		require.Equal(t, bob.UUID, got.UUID)
		require.True(t, got.IsAdmin)

		got, err = users.GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.Equal(t, alice.UUID, got.UUID)

		_, err = users.GetUserByUUID(ctx, uuid.NewString())
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = users.GetUserByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = users.GetUserByUsername(ctx, "a@x.com")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = users.GetUserByUsername(ctx, "Alice")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = users.GetUserByEmail(ctx, "alice")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("username and email lookups stay separate", func(t *testing.T) {
		// The store does not police usernames, the service does.
		odd, err := users.CreateUser(ctx, NewUser("b@x.com", "odd@x.com"))
		require.NoError(t, err)

		got, err := users.GetUserByEmail(ctx, "b@x.com")
		require.NoError(t, err)
		require.Equal(t, bob.UUID, got.UUID)

		got, err = users.GetUserByUsername(ctx, "b@x.com")
		require.NoError(t, err)
		require.Equal(t, odd.UUID, got.UUID)

		require.NoError(t, users.DeleteUser(ctx, odd.UUID))
	})

	t.Run("update password hash", func(t *testing.T) {
		require.NoError(t, users.UpdatePasswordHash(ctx, alice.UUID, "new-hash"))
		got, err := users.GetUserByUUID(ctx, alice.UUID)
		require.NoError(t, err)
		require.Equal(t, "new-hash", got.PasswordHash)

		require.ErrorIs(t, users.UpdatePasswordHash(ctx, uuid.NewString(), "x"), store.ErrNotFound)
	})

	t.Run("list and delete", func(t *testing.T) {
		all, err := users.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, alice.UUID, all[0].UUID)
		require.Equal(t, bob.UUID, all[1].UUID)

		require.NoError(t, users.DeleteUser(ctx, bob.UUID))
		require.ErrorIs(t, users.DeleteUser(ctx, bob.UUID), store.ErrNotFound)

		all, err = users.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	require.NoError(t, s.Ping(ctx))
}
