package service_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/stackplate/internal/server/service"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice", "p1", "a@x.com")
	f.register(t, "bob", "p1", "b@x.com")

	got, err := f.users.GetUser(ctx, alice.UUID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)

	_, err = f.users.GetUser(ctx, "missing")
	require.ErrorIs(t, err, service.ErrUserDoesNotExist)

	all, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "alice", all[0].Username)

	require.NoError(t, f.users.DeleteUser(ctx, alice.UUID))
	require.ErrorIs(t, f.users.DeleteUser(ctx, alice.UUID), service.ErrUserDoesNotExist)
	require.ErrorIs(t, f.users.DeleteUser(ctx, ""), service.ErrMissingFields)
}
