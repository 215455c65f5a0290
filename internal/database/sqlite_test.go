package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/muratoffalex/gachicord/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(ON)"
	db, err := NewSQLiteDB(dsn, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrationsCreateTables(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"users", "generations", "cache"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestSaveUserKeepsPublicID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveUser(ctx, User{ID: "42", Username: "alice"}))
	first, err := db.GetUser("42")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Username)
	assert.NotEmpty(t, first.PublicID)

	require.NoError(t, db.SaveUser(ctx, User{ID: "42", Username: "alice2"}))
	second, err := db.GetUser("42")
	require.NoError(t, err)
	assert.Equal(t, "alice2", second.Username)
	assert.Equal(t, first.PublicID, second.PublicID)
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUser("missing")
	assert.Error(t, err)
}

func TestLogGeneration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.LogGeneration(ctx, Generation{
		UserID:   "1",
		Kind:     KindImage,
		Provider: "dalle",
		Prompt:   "a cat",
		Success:  true,
	}))
	require.NoError(t, db.LogGeneration(ctx, Generation{
		UserID:   "1",
		Kind:     KindVideo,
		Provider: "stability",
	}))
	require.NoError(t, db.LogGeneration(ctx, Generation{UserID: "2", Kind: KindSearch, Provider: "duckduckgo"}))

	count, err := db.CountGenerations(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var success bool
	var kind string
	err = db.QueryRow("SELECT kind, success FROM generations WHERE provider = 'dalle'").Scan(&kind, &success)
	require.NoError(t, err)
	assert.Equal(t, "image", kind)
	assert.True(t, success)
}

func TestPurgeOldGenerations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.LogGeneration(ctx, Generation{ID: "new", UserID: "1", Kind: KindImage, Provider: "dalle"}))
	_, err := db.Exec(`
		INSERT INTO generations (id, user_id, kind, provider, created_at)
		VALUES ('old', '1', 'image', 'dalle', datetime('now', '-40 days'))
	`)
	require.NoError(t, err)

	purged, err := db.PurgeOldGenerations(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	count, err := db.CountGenerations(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPurgeExpiredCache(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Exec("INSERT INTO cache (key, data, expires_at) VALUES ('old', x'01', unixepoch() - 10), ('new', x'02', unixepoch() + 600)")
	require.NoError(t, err)

	purged, err := db.PurgeExpiredCache()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
