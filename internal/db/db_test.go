package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, name string, query func(string) error) {
	t.Helper()
	assert.NoError(t, query(name), "table %s", name)
}

func TestOpenForTestingMigrates(t *testing.T) {
	d, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	for _, name := range []string{"drafts", "review_sessions", "settings_cache"} {
		tableExists(t, name, func(n string) error {
			var got string
			return d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", n).Scan(&got)
		})
	}

	v, dirty, err := Version(d)
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
	assert.False(t, dirty)
}

func TestOpenForTestingIsolated(t *testing.T) {
	a, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })
	b, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, b.Close()) })

	_, err = a.Exec("INSERT INTO settings_cache (user_id, payload, updated_at) VALUES ('u1', x'00', 1)")
	require.NoError(t, err)

	var n int
	require.NoError(t, b.QueryRow("SELECT COUNT(*) FROM settings_cache").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestOpenFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "briefdesk.db")

	d, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
}

func TestMigrateDown(t *testing.T) {
	d, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	require.NoError(t, MigrateDown(d))

	var n int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='drafts'").Scan(&n))
	assert.Equal(t, 0, n)
}
