package core

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"book-finder/internal/core/model"
	"book-finder/internal/metrics"
)

const favoritesKey = "favorites"

// FavoritesStore is the process-wide favorites set. It keeps insertion
// order and writes the whole set to the KeyValueStore on every mutation.
type FavoritesStore struct {
	mu    sync.RWMutex
	byID  map[string]model.Item
	order []string
	kv    KeyValueStore
	log   *slog.Logger
}

// NewFavoritesStore loads the persisted snapshot. A missing or unreadable
// snapshot yields an empty set; it never fails construction.
func NewFavoritesStore(ctx context.Context, kv KeyValueStore, logger *slog.Logger) *FavoritesStore {
	s := &FavoritesStore{byID: make(map[string]model.Item), kv: kv, log: logger}

	raw, err := kv.Get(ctx, favoritesKey)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return s
	case err != nil:
		logger.Warn("favorites: load failed, starting empty", "err", err)
		return s
	}

	var items []model.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("favorites: corrupt snapshot, starting empty", "err", err)
		return s
	}
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if _, dup := s.byID[it.ID]; dup {
			continue
		}
		s.byID[it.ID] = it.Clone()
		s.order = append(s.order, it.ID)
	}
	metrics.FavoritesCount.Set(float64(len(s.order)))
	logger.Debug("favorites: loaded", "count", len(s.order))
	return s
}

// Add inserts item unless its id is already present.
func (s *FavoritesStore) Add(ctx context.Context, item model.Item) error {
	if item.ID == "" {
		return model.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[item.ID]; ok {
		return nil
	}
	s.byID[item.ID] = item.Clone()
	s.order = append(s.order, item.ID)

	if err := s.persistLocked(ctx); err != nil {
		delete(s.byID, item.ID)
		s.order = s.order[:len(s.order)-1]
		return err
	}
	return nil
}

// Remove deletes id if present.
func (s *FavoritesStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.byID[id]
	if !ok {
		return nil
	}
	idx := indexOf(s.order, id)
	prevOrder := s.order
	s.order = append(append(make([]string, 0, len(prevOrder)-1), prevOrder[:idx]...), prevOrder[idx+1:]...)
	delete(s.byID, id)

	if err := s.persistLocked(ctx); err != nil {
		s.byID[id] = prev
		s.order = prevOrder
		return err
	}
	return nil
}

func (s *FavoritesStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

func (s *FavoritesStore) Get(id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.byID[id]
	if !ok {
		return model.Item{}, false
	}
	return it.Clone(), true
}

func (s *FavoritesStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List returns the favorites in insertion order.
func (s *FavoritesStore) List() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Page slices List the same way the search results are paginated.
func (s *FavoritesStore) Page(page, size int) model.Page[model.Item] {
	items := s.List()
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = model.DefaultPageSize
	}
	total := len(items)
	start := total
	if page-1 <= total/size {
		start = min((page-1)*size, total)
	}
	end := start + min(size, total-start)
	paged := make([]model.Item, end-start)
	copy(paged, items[start:end])
	return model.Page[model.Item]{Data: paged, Page: page, PageSize: size, Total: total}
}

func (s *FavoritesStore) snapshotLocked() []model.Item {
	out := make([]model.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

func (s *FavoritesStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, favoritesKey, data); err != nil {
		s.log.Error("favorites: persist failed", "err", err)
		return err
	}
	metrics.FavoritesCount.Set(float64(len(s.order)))
	return nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
