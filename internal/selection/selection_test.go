package selection_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/selection"
)

type fakeLister struct {
	ids       []string
	lastLimit int
	err       error
}

func (f *fakeLister) ListItemIDs(_ context.Context, _ *dto.ItemFilters, limit int) ([]string, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.ids) > limit {
		return f.ids[:limit], nil
	}
	return f.ids, nil
}

type failingStore struct{ selection.Store }

func (failingStore) Get(context.Context, string) ([]string, error) {
	return nil, errors.New("store down")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "selection:products:u1", selection.Key(selection.ViewProducts, "u1"))
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	store := selection.NewMemoryStore()
	svc := selection.NewService(store, &fakeLister{}, 0, logger.NewNop())

	ids, err := svc.Toggle(ctx, selection.ViewItems, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	ids, err = svc.Toggle(ctx, selection.ViewItems, "u1", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, err = svc.Toggle(ctx, selection.ViewItems, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	// Views and users are isolated.
	other, err := svc.Get(ctx, selection.ViewProducts, "u1")
	require.NoError(t, err)
	assert.Empty(t, other)
	other, err = svc.Get(ctx, selection.ViewItems, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	// Emptying the selection removes the key.
	_, err = svc.Toggle(ctx, selection.ViewItems, "u1", "b")
	require.NoError(t, err)
	raw, err := store.Get(ctx, selection.Key(selection.ViewItems, "u1"))
	require.NoError(t, err)
	assert.Nil(t, raw)

	_, err = svc.Toggle(ctx, selection.ViewItems, "u1", "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = svc.Toggle(ctx, selection.View("orders"), "u1", "a")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestTogglePage(t *testing.T) {
	ctx := context.Background()
	svc := selection.NewService(selection.NewMemoryStore(), &fakeLister{}, 0, logger.NewNop())

	_, err := svc.Toggle(ctx, selection.ViewItems, "u1", "x")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, selection.ViewItems, "u1", "b")
	require.NoError(t, err)

	// Partially selected page: select the rest.
	ids, err := svc.TogglePage(ctx, selection.ViewItems, "u1", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "b", "a", "c"}, ids)

	// Fully selected page: deselect it, keeping other pages.
	ids, err = svc.TogglePage(ctx, selection.ViewItems, "u1", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids)
}

func TestSelectAllMatching(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{ids: []string{"1", "2", "3"}}
	svc := selection.NewService(selection.NewMemoryStore(), lister, 2, logger.NewNop())

	_, err := svc.Toggle(ctx, selection.ViewProducts, "u1", "old")
	require.NoError(t, err)

	ids, err := svc.SelectAllMatching(ctx, selection.ViewProducts, "u1", &dto.ItemFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
	assert.Equal(t, 2, lister.lastLimit)

	lister.ids = nil
	ids, err = svc.SelectAllMatching(ctx, selection.ViewProducts, "u1", &dto.ItemFilters{})
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, svc.Clear(ctx, selection.ViewProducts, "u1"))

	def := selection.NewService(selection.NewMemoryStore(), lister, 0, logger.NewNop())
	_, err = def.SelectAllMatching(ctx, selection.ViewItems, "u1", &dto.ItemFilters{})
	require.NoError(t, err)
	assert.Equal(t, selection.DefaultSelectAllLimit, lister.lastLimit)
}

func TestStoreFailureIsUnexpected(t *testing.T) {
	svc := selection.NewService(failingStore{}, &fakeLister{}, 0, logger.NewNop())
	_, err := svc.Get(context.Background(), selection.ViewItems, "u1")
	assert.True(t, apperror.Is(err, apperror.KindUnexpected))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	store := selection.NewRedisStore(client, time.Minute)
	key := "selection:test:" + t.Name()
	t.Cleanup(func() { _ = store.Clear(ctx, key) })

	ids, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Set(ctx, key, []string{"b", "a"}))
	ids, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Set(ctx, key, []string{"c"}))
	ids, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)

	require.NoError(t, store.Clear(ctx, key))
	n, err := client.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
