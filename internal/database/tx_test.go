package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/testutil"
)

func TestMigrate_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, database.Migrate(context.Background(), db))
	assert.Equal(t, 1, testutil.Count(t, db, "SELECT count(*) FROM counters WHERE name = 'item_sku'"))
}

func TestTransactor_WithinTx(t *testing.T) {
	db := testutil.NewDB(t)
	tm := database.NewTransactor(db)
	ctx := context.Background()

	insert := func(ctx context.Context, name string) error {
		_, err := database.Conn(ctx, db).ExecContext(ctx,
			db.Rebind("INSERT INTO counters (name, value) VALUES (?, 0)"), name)
		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		err := tm.WithinTx(ctx, func(ctx context.Context) error {
			assert.True(t, database.InTx(ctx))
			return insert(ctx, "committed")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, testutil.Count(t, db, "SELECT count(*) FROM counters WHERE name = ?", "committed"))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := tm.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, insert(ctx, "rolled-back"))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, testutil.Count(t, db, "SELECT count(*) FROM counters WHERE name = ?", "rolled-back"))
	})

	t.Run("nested call joins outer transaction", func(t *testing.T) {
		err := tm.WithinTx(ctx, func(ctx context.Context) error {
			if err := insert(ctx, "outer"); err != nil {
				return err
			}
			if err := tm.WithinTx(ctx, func(ctx context.Context) error { return insert(ctx, "inner") }); err != nil {
				return err
			}
			return errors.New("abort both")
		})
		assert.Error(t, err)
		assert.Equal(t, 0, testutil.Count(t, db, "SELECT count(*) FROM counters WHERE name IN ('outer', 'inner')"))
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = tm.WithinTx(ctx, func(ctx context.Context) error {
				_ = insert(ctx, "panicked")
				panic("unexpected")
			})
		})
		assert.Equal(t, 0, testutil.Count(t, db, "SELECT count(*) FROM counters WHERE name = ?", "panicked"))
	})
}

func TestAfterCommit(t *testing.T) {
	db := testutil.NewDB(t)
	tm := database.NewTransactor(db)
	ctx := context.Background()

	t.Run("runs immediately without a transaction", func(t *testing.T) {
		ran := false
		database.AfterCommit(ctx, func() { ran = true })
		assert.True(t, ran)
	})

	t.Run("deferred until the outer commit", func(t *testing.T) {
		var calls []string
		err := tm.WithinTx(ctx, func(ctx context.Context) error {
			database.AfterCommit(ctx, func() { calls = append(calls, "outer") })
			err := tm.WithinTx(ctx, func(ctx context.Context) error {
				database.AfterCommit(ctx, func() { calls = append(calls, "inner") })
				return nil
			})
			assert.Empty(t, calls)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"outer", "inner"}, calls)
	})

	t.Run("dropped on rollback", func(t *testing.T) {
		ran := false
		err := tm.WithinTx(ctx, func(ctx context.Context) error {
			database.AfterCommit(ctx, func() { ran = true })
			return errors.New("abort")
		})
		assert.Error(t, err)
		assert.False(t, ran)
	})
}
