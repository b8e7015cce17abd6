package core

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"book-finder/internal/core/model"
)

// Gateway is the remote catalog. Failures are absorbed by the
// implementation: Search degrades to an empty result and GetByID to absent.
type Gateway interface {
	Search(ctx context.Context, q model.SearchQuery, pageSize, startIndex int) model.SearchResult
	GetByID(ctx context.Context, id string) (model.Item, bool)
}

// KeyValueStore persists opaque snapshots by key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// ErrKeyNotFound is returned by KeyValueStore.Get for an unknown key.
var ErrKeyNotFound = errors.New("key not found")

// Navigator receives every locally originated PageState in its URL form,
// the way a browser history entry would.
type Navigator interface {
	Push(values url.Values)
}

type Service struct {
	Gateway    Gateway
	Favorites  *FavoritesStore
	Theme      *ThemeStore
	WindowSize int
	log        *slog.Logger
}

func NewService(gw Gateway, favs *FavoritesStore, theme *ThemeStore, windowSize int, logger *slog.Logger) *Service {
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	return &Service{Gateway: gw, Favorites: favs, Theme: theme, WindowSize: windowSize, log: logger}
}

// NewController returns a controller bound to the service's gateway.
func (s *Service) NewController(nav Navigator) *Controller {
	return NewController(s.Gateway, nav, s.WindowSize, s.log)
}

// Search resolves the URL-encoded page state the way a freshly loaded page
// would: restore it, wait for the fetch and return the settled view.
func (s *Service) Search(ctx context.Context, values url.Values) View {
	c := s.NewController(nil)
	c.Restore(ctx, values)
	c.Wait()
	return c.View()
}

// Cards decorates items with the favorites membership of each id.
func (s *Service) Cards(items []model.Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, NewItemView(it, s.Favorites.Contains(it.ID)))
	}
	return out
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Item, error) {
	if id == "" {
		return model.Item{}, model.ErrValidation
	}
	it, ok := s.Gateway.GetByID(ctx, id)
	if !ok {
		return model.Item{}, model.ErrNotFound
	}
	return it, nil
}

// AddFavorite stores item. An item carrying only an id is completed from
// the catalog first; when the catalog has nothing the bare item is kept.
func (s *Service) AddFavorite(ctx context.Context, item model.Item) (model.Item, error) {
	if item.ID == "" {
		return model.Item{}, model.ErrValidation
	}
	if existing, ok := s.Favorites.Get(item.ID); ok {
		return existing, nil
	}
	if item.Title == "" {
		if full, ok := s.Gateway.GetByID(ctx, item.ID); ok {
			item = full
		}
	}
	if err := s.Favorites.Add(ctx, item); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// ToggleFavorite flips membership of item and reports the new state.
func (s *Service) ToggleFavorite(ctx context.Context, item model.Item) (bool, error) {
	if s.Favorites.Contains(item.ID) {
		return false, s.Favorites.Remove(ctx, item.ID)
	}
	if _, err := s.AddFavorite(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}
