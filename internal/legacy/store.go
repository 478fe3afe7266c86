// Package legacy is the pre-reducer cart and favorites container. Nothing in
// the running service builds one; it defines and writes the durable format
// under the "cart" and "favorites" keys that the migration reads, and the
// migration tests use it to produce those snapshots.
package legacy

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/notify"
	"storefront/clientcore/internal/repository"
)

type State struct {
	Cart      []model.Product       `json:"cart"`
	Favorites []model.FavoriteEntry `json:"favorites"`
	User      *model.Profile        `json:"user"`
}

// Store appends on add, so the same product may appear more than once in
// either list.
type Store struct {
	mu       sync.Mutex
	state    State
	kv       repository.KVStore
	notifier notify.Notifier
	logger   *zap.Logger
}

func New(ctx context.Context, kv repository.KVStore, notifier notify.Notifier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		kv:       kv,
		notifier: notify.OrNop(notifier),
		logger:   logger.Named("legacy"),
	}
	s.Load(ctx)
	return s
}

// Load replaces both lists with their durable snapshots. Unreadable snapshots
// load as empty.
func (s *Store) Load(ctx context.Context) {
	var cart []model.Product
	if _, err := repository.GetJSON(ctx, s.kv, repository.KeyCart, &cart); err != nil {
		s.logger.Warn("discarding unreadable legacy cart", zap.Error(err))
		cart = nil
	}
	var favs []model.FavoriteEntry
	if _, err := repository.GetJSON(ctx, s.kv, repository.KeyFavorites, &favs); err != nil {
		s.logger.Warn("discarding unreadable legacy favorites", zap.Error(err))
		favs = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart = orEmpty(cart)
	s.state.Favorites = orEmpty(favs)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) AddToCart(ctx context.Context, p model.Product) {
	s.mu.Lock()
	s.state.Cart = appendCopy(s.state.Cart, p)
	s.write(ctx, repository.KeyCart, s.state.Cart)
	s.mu.Unlock()
	s.notifier.Notify(p.Title+" added to cart", notify.KindSuccess)
}

func (s *Store) RemoveFromCart(ctx context.Context, productID int64) {
	s.mu.Lock()
	s.state.Cart = without(s.state.Cart, productID)
	s.write(ctx, repository.KeyCart, s.state.Cart)
	s.mu.Unlock()
	s.notifier.Notify("Item removed from cart", notify.KindInfo)
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart = []model.Product{}
	s.write(ctx, repository.KeyCart, s.state.Cart)
}

func (s *Store) AddToFavorites(ctx context.Context, p model.FavoriteEntry) {
	s.mu.Lock()
	s.state.Favorites = appendCopy(s.state.Favorites, p)
	s.write(ctx, repository.KeyFavorites, s.state.Favorites)
	s.mu.Unlock()
	s.notifier.Notify(p.Title+" added to favorites", notify.KindSuccess)
}

func (s *Store) RemoveFromFavorites(ctx context.Context, productID int64) {
	s.mu.Lock()
	s.state.Favorites = without(s.state.Favorites, productID)
	s.write(ctx, repository.KeyFavorites, s.state.Favorites)
	s.mu.Unlock()
	s.notifier.Notify("Item removed from favorites", notify.KindInfo)
}

// SetUser is memory only; the legacy container never persisted the user.
func (s *Store) SetUser(user *model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = user
}

func (s *Store) write(ctx context.Context, key string, items []model.Product) {
	if err := repository.SetJSON(ctx, s.kv, key, items); err != nil {
		s.logger.Error("failed to persist legacy snapshot", zap.String("key", key), zap.Error(err))
	}
}

func appendCopy(items []model.Product, p model.Product) []model.Product {
	out := make([]model.Product, len(items), len(items)+1)
	copy(out, items)
	return append(out, p)
}

func without(items []model.Product, id int64) []model.Product {
	out := make([]model.Product, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func orEmpty(items []model.Product) []model.Product {
	if items == nil {
		return []model.Product{}
	}
	return items
}
