package changelog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	"github.com/fekuna/omnipos-inventory-service/internal/changelog/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/clock"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/testutil"
)

var actor = model.Actor{UserID: "u1", UserName: "Sato"}

var labels = []changelog.FieldLabel{
	{Field: "name", Label: "名前"},
	{Field: "sortOrder", Label: "表示順"},
}

func newMaster(name string) *model.MasterData {
	return &model.MasterData{
		BaseModel: model.BaseModel{ID: "m1"},
		Kind:      model.KindManufacturer,
		Name:      name,
	}
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewPGRepository(db)
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	rec := changelog.NewRecorder(repo, clk)

	var written []string
	rec.OnWrite(func(action string) { written = append(written, action) })

	t.Run("create", func(t *testing.T) {
		require.NoError(t, rec.RecordCreate(ctx, newMaster("Acme"), actor))
	})

	t.Run("update without changes writes nothing", func(t *testing.T) {
		clk.Advance(time.Second)
		logged, err := rec.RecordUpdate(ctx, newMaster("Acme"), newMaster("Acme"), labels, actor)
		require.NoError(t, err)
		assert.False(t, logged)
	})

	t.Run("update with one change", func(t *testing.T) {
		clk.Advance(time.Second)
		logged, err := rec.RecordUpdate(ctx, newMaster("Acme"), newMaster("Acme Corp"), labels, actor)
		require.NoError(t, err)
		assert.True(t, logged)
	})

	t.Run("delete", func(t *testing.T) {
		clk.Advance(time.Second)
		require.NoError(t, rec.RecordDelete(ctx, newMaster("Acme Corp"), actor))
	})

	entries, err := repo.FindAll(ctx, &changelog.Filters{EntityID: "m1"})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"create", "update", "delete"}, written)

	// Newest first.
	assert.Equal(t, model.ActionDelete, entries[0].Action)
	assert.Nil(t, entries[0].Changes)
	assert.Equal(t, "Acme Corp", entries[0].EntityName)

	assert.Equal(t, model.ActionUpdate, entries[1].Action)
	require.Len(t, entries[1].Changes, 1)
	assert.Equal(t, model.FieldChange{Field: "name", Label: "名前", From: "Acme", To: "Acme Corp"}, entries[1].Changes[0])
	assert.Equal(t, "u1", entries[1].UserID)
	assert.Equal(t, "Sato", entries[1].UserName)
	assert.Equal(t, "manufacturer", entries[1].EntityType)

	assert.Equal(t, model.ActionCreate, entries[2].Action)
}

func TestRecorderSameInstantKeepsWriteOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewPGRepository(db)
	rec := changelog.NewRecorder(repo, clock.NewMockClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))

	for range 20 {
		require.NoError(t, rec.RecordCreate(ctx, newMaster("Acme"), actor))
		require.NoError(t, rec.RecordDelete(ctx, newMaster("Acme"), actor))
	}

	entries, err := repo.FindAll(ctx, &changelog.Filters{EntityID: "m1"})
	require.NoError(t, err)
	require.Len(t, entries, 40)
	for n, e := range entries {
		want := model.ActionDelete
		if n%2 == 1 {
			want = model.ActionCreate
		}
		assert.Equal(t, want, e.Action, "entry %d", n)
	}
}

func TestRecorderJoinsTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	rec := changelog.NewRecorder(repository.NewPGRepository(db), clock.NewMockClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	tx := database.NewTransactor(db)

	var written []string
	rec.OnWrite(func(action string) { written = append(written, action) })

	t.Run("rollback discards entries and callbacks", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, rec.RecordCreate(ctx, newMaster("Acme"), actor))
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		assert.Equal(t, 0, testutil.Count(t, db, "SELECT COUNT(*) FROM change_logs"))
		assert.Empty(t, written)
	})

	t.Run("commit reports entries afterwards", func(t *testing.T) {
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, rec.RecordCreate(ctx, newMaster("Acme"), actor))
			require.NoError(t, rec.RecordDelete(ctx, newMaster("Acme"), actor))
			assert.Empty(t, written)
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, 2, testutil.Count(t, db, "SELECT COUNT(*) FROM change_logs"))
		assert.Equal(t, []string{"create", "delete"}, written)
	})
}
