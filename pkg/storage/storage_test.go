package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "admin_console_theme_v1::user-1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "admin_console_theme_v1::user-1", []byte(`{"theme":"dark"}`)))
	data, err := store.Load(ctx, "admin_console_theme_v1::user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(data))

	require.NoError(t, store.Save(ctx, "admin_console_theme_v1::user-1", []byte(`{"theme":"light"}`)))
	data, err = store.Load(ctx, "admin_console_theme_v1::user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(data))

	require.NoError(t, store.Delete(ctx, "admin_console_theme_v1::user-1"))
	_, err = store.Load(ctx, "admin_console_theme_v1::user-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesBlobs(t *testing.T) {
	store := NewMemoryStore()
	blob := []byte(`{"theme":"dark"}`)
	require.NoError(t, store.Save(context.Background(), "k", blob))
	blob[2] = 'X'
	data, err := store.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"dark"}`, string(data))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "../escape", []byte("{}")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLStore(context.Background(), SQLConfig{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "console.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	exerciseStore(t, store)
}

func TestSQLStoreRejectsBadTable(t *testing.T) {
	_, err := NewSQLStore(context.Background(), SQLConfig{Driver: DriverSQLite, DSN: ":memory:", Table: "prefs; DROP"})
	require.Error(t, err)
}

func TestSQLStoreRebind(t *testing.T) {
	s := &SQLStore{dialect: DriverPgx}
	assert.Equal(t, "SELECT a FROM t WHERE k = $1 AND v = $2", s.rebind("SELECT a FROM t WHERE k = ? AND v = ?"))
	s.dialect = DriverSQLite
	assert.Equal(t, "k = ?", s.rebind("k = ?"))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("CONSOLE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CONSOLE_TEST_POSTGRES_DSN not set")
	}
	for _, driver := range []string{DriverPostgres, DriverPgx} {
		t.Run(driver, func(t *testing.T) {
			store, err := NewSQLStore(context.Background(), SQLConfig{Driver: driver, DSN: dsn, Table: "console_preferences_test"})
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })
			exerciseStore(t, store)
		})
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("CONSOLE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CONSOLE_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, Prefix: "console-test:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	exerciseStore(t, store)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongo"})
	require.Error(t, err)
	store, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}
