package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/stackplate/internal/server/store/drivers/sqlite"
	"github.com/aussiebroadwan/stackplate/internal/server/store/storetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, dsn string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(dsn, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestUsers_InMemory(t *testing.T) {
	storetest.RunUsers(t, newStore(t, ":memory:"))
}

func TestUsers_File(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "users.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	storetest.RunUsers(t, newStore(t, dsn))
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	s := newStore(t, ":memory:")
	require.NoError(t, s.ApplyMigrations())
}
