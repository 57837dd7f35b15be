package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/stretchr/testify/require"
)

func TestResetRecord_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rec := domain.ResetRecord{Email: "a@x.com", IssuedAt: issued}

	require.False(t, rec.Expired(issued, domain.DefaultResetWindow))
	require.False(t, rec.Expired(issued.Add(23*time.Hour+59*time.Minute), domain.DefaultResetWindow))
	require.False(t, rec.Expired(issued.Add(24*time.Hour), domain.DefaultResetWindow))
	require.True(t, rec.Expired(issued.Add(24*time.Hour+time.Minute), domain.DefaultResetWindow))
}

func TestUser_InfoOmitsHash(t *testing.T) {
	u := domain.User{
		ID:           7,
		UUID:         "uuid-1",
		Username:     "alice",
		PasswordHash: "$argon2id$...",
		Email:        "a@x.com",
		IsAdmin:      true,
	}
	require.Equal(t, domain.UserInfo{
		UUID:     "uuid-1",
		Username: "alice",
		Email:    "a@x.com",
		IsAdmin:  true,
	}, u.Info())
}
