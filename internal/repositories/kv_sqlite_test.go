package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteKVRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	repo := NewSQLiteKVRepository(db)

	_, err = repo.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, repo.Set(ctx, "token", "abc123"))
	require.NoError(t, repo.Set(ctx, "token", "def456"))
	require.NoError(t, repo.Set(ctx, "user", `{"id":1,"name":"A"}`))

	got, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "def456", got)

	// survives a reopen, like a process restart
	require.NoError(t, db.Close())
	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	repo = NewSQLiteKVRepository(db)

	got, err = repo.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"A"}`, got)

	require.NoError(t, repo.Delete(ctx, "token", "user", "missing"))
	_, err = repo.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = repo.Get(ctx, "user")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, repo.Delete(ctx))
}
