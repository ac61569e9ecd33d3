package store

import (
	"context"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
)

// Favorites is the favorite products store.
type Favorites struct {
	*Store[domain.FavoriteEntry]
}

// NewFavorites creates a favorites store persisting under opts.Key (persistence.KeyFavorites when empty).
func NewFavorites(opts Options) *Favorites {
	if opts.Key == "" {
		opts.Key = persistence.KeyFavorites
	}
	return &Favorites{Store: New[domain.FavoriteEntry](opts)}
}

// AddFavorite marks the product as a favorite; already-favorite products are a no-op.
func (f *Favorites) AddFavorite(ctx context.Context, in domain.FavoriteInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return f.Mutate(ctx, OpAdd, func(items []domain.FavoriteEntry) ([]domain.FavoriteEntry, bool) {
		if indexOf(items, in.ProductID) >= 0 {
			return items, false
		}
		return append(items, domain.NewFavoriteEntry(in, f.now().UTC())), true
	})
}

// RemoveFavorite unmarks the product; absent products are a no-op.
func (f *Favorites) RemoveFavorite(ctx context.Context, productID string) error {
	return f.Mutate(ctx, OpRemove, func(items []domain.FavoriteEntry) ([]domain.FavoriteEntry, bool) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, false
		}
		return append(items[:i], items[i+1:]...), true
	})
}

// ToggleFavorite flips the product's favorite state and returns true when it
// is now a favorite.
func (f *Favorites) ToggleFavorite(ctx context.Context, in domain.FavoriteInput) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}

	var added bool
	err := f.Mutate(ctx, "toggle", func(items []domain.FavoriteEntry) ([]domain.FavoriteEntry, bool) {
		if i := indexOf(items, in.ProductID); i >= 0 {
			return append(items[:i], items[i+1:]...), true
		}
		added = true
		return append(items, domain.NewFavoriteEntry(in, f.now().UTC())), true
	})
	return added, err
}

// IsFavorite reports whether the product is a favorite.
func (f *Favorites) IsFavorite(productID string) bool {
	_, ok := f.Get(productID)
	return ok
}

// ClearFavorites empties the store.
func (f *Favorites) ClearFavorites(ctx context.Context) error {
	return f.Mutate(ctx, OpClear, func(items []domain.FavoriteEntry) ([]domain.FavoriteEntry, bool) {
		return []domain.FavoriteEntry{}, len(items) > 0
	})
}
