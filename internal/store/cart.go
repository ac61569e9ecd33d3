package store

import (
	"context"
	"log/slog"
	"math"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/logger"
)

// Cart mutation op names, used in snapshots and metrics.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpUpdate  = "update"
	OpClear   = "clear"
	OpRestore = "restore"
)

// Cart is the line item store.
type Cart struct {
	*Store[domain.LineItem]
	logger *slog.Logger
}

// NewCart creates a cart persisting under opts.Key (persistence.KeyCart when empty).
func NewCart(opts Options) *Cart {
	if opts.Key == "" {
		opts.Key = persistence.KeyCart
	}
	s := New[domain.LineItem](opts)
	return &Cart{Store: s, logger: s.logger}
}

// AddItem adds one unit of the product: an existing line's quantity goes up by
// one, otherwise a new line is appended at quantity 1. It returns the line as
// committed and the quantity it had before (0 for a new line).
func (c *Cart) AddItem(ctx context.Context, in domain.LineItemInput) (domain.LineItem, int, error) {
	if err := in.Validate(); err != nil {
		return domain.LineItem{}, 0, err
	}

	var (
		committed domain.LineItem
		previous  int
	)
	err := c.Mutate(ctx, OpAdd, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		if i := indexOf(items, in.ProductID); i >= 0 {
			previous = items[i].Quantity
			items[i].Quantity++
			committed = items[i]
			return items, true
		}
		committed = domain.NewLineItem(in)
		return append(items, committed), true
	})
	if err != nil {
		return domain.LineItem{}, 0, err
	}

	logger.WithContext(ctx, c.logger).DebugContext(ctx, "item added to cart",
		slog.String("product_id", in.ProductID),
		slog.Int("quantity", committed.Quantity),
	)
	return committed, previous, nil
}

// RemoveItem deletes the product's line. Removing an absent product is a no-op.
// It returns the removed line and its index, and whether anything was removed.
func (c *Cart) RemoveItem(ctx context.Context, productID string) (domain.LineItem, int, bool, error) {
	var (
		removed domain.LineItem
		pos     = -1
	)
	err := c.Mutate(ctx, OpRemove, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		pos = indexOf(items, productID)
		if pos < 0 {
			return items, false
		}
		removed = items[pos]
		return append(items[:pos], items[pos+1:]...), true
	})
	if err != nil || pos < 0 {
		return domain.LineItem{}, -1, false, err
	}
	return removed, pos, true, nil
}

// UpdateQuantity sets the product's quantity. A quantity of zero or less
// removes the line, exactly like RemoveItem. Updating an absent product is a
// no-op. It returns the line as it was before, its index, and whether it
// existed.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.LineItem, int, bool, error) {
	if quantity <= 0 {
		return c.RemoveItem(ctx, productID)
	}

	var (
		before domain.LineItem
		pos    = -1
	)
	err := c.Mutate(ctx, OpUpdate, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		pos = indexOf(items, productID)
		if pos < 0 {
			return items, false
		}
		before = items[pos]
		if items[pos].Quantity == quantity {
			return items, false
		}
		items[pos].Quantity = quantity
		return items, true
	})
	if err != nil || pos < 0 {
		return domain.LineItem{}, -1, false, err
	}
	return before, pos, true, nil
}

// ClearCart empties the cart and returns what it held.
func (c *Cart) ClearCart(ctx context.Context) ([]domain.LineItem, error) {
	var cleared []domain.LineItem
	err := c.Mutate(ctx, OpClear, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		cleared = items
		return []domain.LineItem{}, len(items) > 0
	})
	return cleared, err
}

// GetTotalItems returns the sum of quantities.
func (c *Cart) GetTotalItems() int {
	var count int
	for _, item := range c.Items() {
		count += item.Quantity
	}
	return count
}

// GetTotalPrice returns the sum of price times quantity, rounded to cents.
func (c *Cart) GetTotalPrice() float64 {
	var total float64
	for _, item := range c.Items() {
		total += item.Subtotal()
	}
	return math.Round(total*100) / 100
}

// RestoreItem puts item back at pos (clamped to the list bounds), replacing any
// line for the same product. It is used to apply history inverses and does not
// validate.
func (c *Cart) RestoreItem(ctx context.Context, item domain.LineItem, pos int) error {
	return c.Mutate(ctx, OpRestore, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		if i := indexOf(items, item.ProductID); i >= 0 {
			items = append(items[:i], items[i+1:]...)
		}
		if pos < 0 || pos > len(items) {
			pos = len(items)
		}
		items = append(items, domain.LineItem{})
		copy(items[pos+1:], items[pos:])
		items[pos] = item
		return items, true
	})
}

// ReplaceAll swaps the whole cart for items.
func (c *Cart) ReplaceAll(ctx context.Context, items []domain.LineItem) error {
	return c.Mutate(ctx, OpRestore, func([]domain.LineItem) ([]domain.LineItem, bool) {
		return append([]domain.LineItem(nil), items...), true
	})
}
