//go:build unit

package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"book-finder/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavorites_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	s := NewFavoritesStore(ctx, kv, discardLogger())

	require.NoError(t, s.Add(ctx, model.Item{ID: "a", Title: "First"}))
	require.NoError(t, s.Add(ctx, model.Item{ID: "a", Title: "Second"}))

	assert.Equal(t, 1, s.Len())
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, 1, kv.puts)
}

func TestFavorites_AddRejectsEmptyID(t *testing.T) {
	s := NewFavoritesStore(context.Background(), newFakeKV(), discardLogger())
	err := s.Add(context.Background(), model.Item{Title: "no id"})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, s.Len())
}

func TestFavorites_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	s := NewFavoritesStore(ctx, kv, discardLogger())
	require.NoError(t, s.Remove(ctx, "missing"))
	assert.Zero(t, kv.puts)
}

func TestFavorites_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewFavoritesStore(ctx, newFakeKV(), discardLogger())
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Add(ctx, model.Item{ID: id}))
	}
	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Add(ctx, model.Item{ID: "a"}))

	var ids []string
	for _, it := range s.List() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
	assert.True(t, s.Contains("b"))
	assert.False(t, s.Contains("z"))
}

func TestFavorites_PersistAndReload(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	s := NewFavoritesStore(ctx, kv, discardLogger())
	require.NoError(t, s.Add(ctx, model.Item{ID: "x", Title: "Dune", Authors: []string{"Frank Herbert"}}))
	require.NoError(t, s.Add(ctx, model.Item{ID: "y", Title: "Emma"}))

	reloaded := NewFavoritesStore(ctx, kv, discardLogger())
	assert.Equal(t, s.List(), reloaded.List())
}

func TestFavorites_CorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[favoritesKey] = []byte("{not json")

	s := NewFavoritesStore(ctx, kv, discardLogger())
	assert.Zero(t, s.Len())

	require.NoError(t, s.Add(ctx, model.Item{ID: "a"}))
	assert.Equal(t, 1, s.Len())
}

func TestFavorites_LoadErrorStartsEmpty(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("permission denied")
	s := NewFavoritesStore(context.Background(), kv, discardLogger())
	assert.Zero(t, s.Len())
}

func TestFavorites_SnapshotSkipsBlankAndDuplicateIDs(t *testing.T) {
	kv := newFakeKV()
	kv.data[favoritesKey] = []byte(`[{"id":"a","title":"A"},{"id":"","title":"blank"},{"id":"a","title":"again"},{"id":"b"}]`)

	s := NewFavoritesStore(context.Background(), kv, discardLogger())
	require.Equal(t, 2, s.Len())
	got, _ := s.Get("a")
	assert.Equal(t, "A", got.Title)
}

func TestFavorites_FailedPersistRollsBack(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	s := NewFavoritesStore(ctx, kv, discardLogger())
	require.NoError(t, s.Add(ctx, model.Item{ID: "keep"}))

	kv.failPut = true
	assert.ErrorIs(t, s.Add(ctx, model.Item{ID: "new"}), errPutFailed)
	assert.False(t, s.Contains("new"))

	assert.ErrorIs(t, s.Remove(ctx, "keep"), errPutFailed)
	assert.True(t, s.Contains("keep"))
	assert.Equal(t, 1, s.Len())
}

func TestFavorites_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewFavoritesStore(ctx, newFakeKV(), discardLogger())
	require.NoError(t, s.Add(ctx, model.Item{ID: "a", Authors: []string{"One"}}))

	got, _ := s.Get("a")
	got.Authors[0] = "Changed"

	again, _ := s.Get("a")
	assert.Equal(t, "One", again.Authors[0])
}

func TestFavorites_Page(t *testing.T) {
	ctx := context.Background()
	s := NewFavoritesStore(ctx, newFakeKV(), discardLogger())
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.Add(ctx, model.Item{ID: id}))
	}

	p := s.Page(2, 2)
	assert.Equal(t, 5, p.Total)
	require.Len(t, p.Data, 2)
	assert.Equal(t, "c", p.Data[0].ID)
	assert.Equal(t, "d", p.Data[1].ID)

	assert.Len(t, s.Page(3, 2).Data, 1)
	assert.Empty(t, s.Page(9, 2).Data)

	def := s.Page(0, 0)
	assert.Equal(t, 1, def.Page)
	assert.Equal(t, model.DefaultPageSize, def.PageSize)
	assert.Len(t, def.Data, 5)
}

func TestFavorites_PageHugeSizeOrPage(t *testing.T) {
	ctx := context.Background()
	s := NewFavoritesStore(ctx, newFakeKV(), discardLogger())
	require.NoError(t, s.Add(ctx, model.Item{ID: "a"}))

	p := s.Page(2, math.MaxInt)
	assert.Equal(t, 1, p.Total)
	assert.Empty(t, p.Data)

	p = s.Page(1, math.MaxInt)
	require.Len(t, p.Data, 1)
	assert.Equal(t, "a", p.Data[0].ID)

	assert.Empty(t, s.Page(math.MaxInt, 40).Data)
	assert.Empty(t, s.Page(math.MaxInt, math.MaxInt).Data)
}
