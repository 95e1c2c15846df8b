// Package testutil provides a migrated throwaway database for repository and use-case tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/database"
)

// NewDB opens a private in-memory SQLite database with the service schema applied.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_time_format=sqlite", uuid.NewString())
	db, err := database.Open(context.Background(), &database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// Count returns the number of rows matching query.
func Count(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, db.Rebind(query), args...))
	return n
}
