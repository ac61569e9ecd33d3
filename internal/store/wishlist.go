package store

import (
	"context"
	"fmt"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
)

// OpReorder names the wishlist bulk reorder.
const OpReorder = "reorder"

// Wishlist is the saved-for-later store. Entry order values are insertion
// sequence numbers; removals leave gaps until the next Reorder.
type Wishlist struct {
	*Store[domain.WishlistEntry]
}

// NewWishlist creates a wishlist persisting under opts.Key (persistence.KeyWishlist when empty).
func NewWishlist(opts Options) *Wishlist {
	if opts.Key == "" {
		opts.Key = persistence.KeyWishlist
	}
	return &Wishlist{Store: New[domain.WishlistEntry](opts)}
}

// AddItem appends the product unless it is already saved. It reports whether
// an entry was added.
func (w *Wishlist) AddItem(ctx context.Context, in domain.WishlistInput) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}

	var added bool
	err := w.Mutate(ctx, OpAdd, func(items []domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
		if indexOf(items, in.ProductID) >= 0 {
			return items, false
		}
		added = true
		return append(items, domain.NewWishlistEntry(in, len(items), w.now().UTC())), true
	})
	return added, err
}

// RemoveItem deletes the product's entry; absent products are a no-op.
func (w *Wishlist) RemoveItem(ctx context.Context, productID string) error {
	return w.Mutate(ctx, OpRemove, func(items []domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, false
		}
		return append(items[:i], items[i+1:]...), true
	})
}

// ToggleItem removes the product if saved and adds it otherwise. It returns
// true when the product was added and false when it was removed.
func (w *Wishlist) ToggleItem(ctx context.Context, in domain.WishlistInput) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}

	var added bool
	err := w.Mutate(ctx, "toggle", func(items []domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
		if i := indexOf(items, in.ProductID); i >= 0 {
			return append(items[:i], items[i+1:]...), true
		}
		added = true
		return append(items, domain.NewWishlistEntry(in, len(items), w.now().UTC())), true
	})
	return added, err
}

// IsInWishlist reports whether the product is saved.
func (w *Wishlist) IsInWishlist(productID string) bool {
	_, ok := w.Get(productID)
	return ok
}

// Reorder replaces the entry order in one step. productIDs must name every
// saved product exactly once; orders are renumbered from 0.
func (w *Wishlist) Reorder(ctx context.Context, productIDs []string) error {
	var invalid error
	err := w.Mutate(ctx, OpReorder, func(items []domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
		if len(productIDs) != len(items) {
			invalid = apperrors.InvalidInput(fmt.Sprintf("reorder must list all %d saved products, got %d", len(items), len(productIDs)))
			return items, false
		}
		next := make([]domain.WishlistEntry, 0, len(items))
		seen := make(map[string]struct{}, len(productIDs))
		for order, id := range productIDs {
			i := indexOf(items, id)
			if i < 0 {
				invalid = apperrors.InvalidInput("reorder names unknown product " + id)
				return items, false
			}
			if _, dup := seen[id]; dup {
				invalid = apperrors.InvalidInput("reorder lists product " + id + " twice")
				return items, false
			}
			seen[id] = struct{}{}
			entry := items[i]
			entry.Order = order
			next = append(next, entry)
		}
		return next, true
	})
	if invalid != nil {
		return invalid
	}
	return err
}

// ClearWishlist empties the wishlist.
func (w *Wishlist) ClearWishlist(ctx context.Context) error {
	return w.Mutate(ctx, OpClear, func(items []domain.WishlistEntry) ([]domain.WishlistEntry, bool) {
		return []domain.WishlistEntry{}, len(items) > 0
	})
}
