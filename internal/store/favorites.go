package store

import (
	"context"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/notify"
)

type FavoritesState struct {
	Items []model.FavoriteEntry `json:"items"`
}

func (f FavoritesState) Has(id int64) bool {
	for _, it := range f.Items {
		if it.ID == id {
			return true
		}
	}
	return false
}

type AddToFavorites struct{ Product model.FavoriteEntry }

func (AddToFavorites) Type() string { return "favorites/add" }

type RemoveFromFavorites struct{ ProductID int64 }

func (RemoveFromFavorites) Type() string { return "favorites/remove" }

// SetFavorites replaces the whole list. Later duplicates of an id are dropped.
type SetFavorites struct{ Items []model.FavoriteEntry }

func (SetFavorites) Type() string { return "favorites/set" }

type ClearFavorites struct{}

func (ClearFavorites) Type() string { return "favorites/clear" }

func reduceFavorites(f FavoritesState, a Action) FavoritesState {
	switch a := a.(type) {
	case AddToFavorites:
		if f.Has(a.Product.ID) {
			return f
		}
		items := make([]model.FavoriteEntry, len(f.Items), len(f.Items)+1)
		copy(items, f.Items)
		return FavoritesState{Items: append(items, a.Product)}
	case RemoveFromFavorites:
		if !f.Has(a.ProductID) {
			return f
		}
		items := make([]model.FavoriteEntry, 0, len(f.Items)-1)
		for _, it := range f.Items {
			if it.ID != a.ProductID {
				items = append(items, it)
			}
		}
		return FavoritesState{Items: items}
	case SetFavorites:
		out := FavoritesState{Items: []model.FavoriteEntry{}}
		for _, it := range a.Items {
			if !out.Has(it.ID) {
				out.Items = append(out.Items, it)
			}
		}
		return out
	case ClearFavorites:
		return FavoritesState{Items: []model.FavoriteEntry{}}
	}
	return f
}

func nonNilFavorites(items []model.FavoriteEntry) []model.FavoriteEntry {
	if items == nil {
		return []model.FavoriteEntry{}
	}
	return items
}

// AddToFavorites inserts p unless its id is already present.
func (s *Store) AddToFavorites(ctx context.Context, p model.FavoriteEntry) {
	s.Dispatch(ctx, AddToFavorites{Product: p})
	s.notifier.Notify(p.Title+" added to favorites", notify.KindSuccess)
}

func (s *Store) RemoveFromFavorites(ctx context.Context, productID int64) {
	s.Dispatch(ctx, RemoveFromFavorites{ProductID: productID})
	s.notifier.Notify("Item removed from favorites", notify.KindInfo)
}

func (s *Store) SetFavorites(ctx context.Context, items []model.FavoriteEntry) {
	s.Dispatch(ctx, SetFavorites{Items: items})
}

func (s *Store) ClearFavorites(ctx context.Context) {
	s.Dispatch(ctx, ClearFavorites{})
}

// MergeFavorite is the silent dedup insert used by the migration.
func (s *Store) MergeFavorite(ctx context.Context, p model.FavoriteEntry) {
	s.Dispatch(ctx, AddToFavorites{Product: p})
}

func (s *Store) IsFavorite(id int64) bool {
	return s.State().Favorites.Has(id)
}
