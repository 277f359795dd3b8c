package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finbooks/finbooks/internal/database"
)

// TestDBOption adjusts how MustOpenTestDB prepares the database.
type TestDBOption func(*options)

type options struct {
	migrate bool
	seed    bool
}

// WithAutoMigrate applies the full schema after opening.
func WithAutoMigrate() TestDBOption {
	return func(o *options) { o.migrate = true }
}

// WithSeedData migrates and inserts the default seed rows.
func WithSeedData() TestDBOption {
	return func(o *options) {
		o.migrate = true
		o.seed = true
	}
}

// MustOpenTestDB opens a throwaway in-memory SQLite database and closes it
// via t.Cleanup. Each call gets its own schema, so parallel tests never
// share state.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Named shared-cache databases keep gorm's pooled connections on one
	// schema; the uuid keeps concurrent tests apart.
	db, err := database.Open(database.Config{
		Driver: "sqlite",
		DSN:    "file:testdb_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
	})
	require.NoError(t, err)

	switch {
	case o.seed:
		require.NoError(t, database.AutoMigrateAndSeed(db))
	case o.migrate:
		require.NoError(t, database.AutoMigrate(db))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}
