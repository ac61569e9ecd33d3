// Package command binds cart mutations to the history log. Every command
// mutates the cart and records its intent under one lock, so the log cannot
// drift from the store. Handlers only ever see CartCommands.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/history"
	"github.com/utafrali/EcommerceGo/clientstate/internal/selector"
	"github.com/utafrali/EcommerceGo/clientstate/internal/store"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/logger"
)

// CartCommands is the only write path to a cart.
type CartCommands struct {
	mu      sync.Mutex
	cart    *store.Cart
	log     *history.Log
	logger  *slog.Logger
	summary *selector.Memo[domain.LineItem, selector.Summary]
}

// NewCartCommands wraps cart and log. A nil log keeps history.DefaultLimit actions.
func NewCartCommands(cart *store.Cart, log *history.Log, l *slog.Logger) *CartCommands {
	if log == nil {
		log = history.New(history.DefaultLimit)
	}
	if l == nil {
		l = logger.Discard()
	}
	return &CartCommands{
		cart:    cart,
		log:     log,
		logger:  l,
		summary: selector.NewMemo[domain.LineItem](cart, selector.CartSummary),
	}
}

// Hydrate loads the saved cart. History starts empty for a freshly loaded cart.
func (c *CartCommands) Hydrate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Clear()
	return c.cart.Hydrate(ctx)
}

// Close makes every later command fail with store.ErrClosed. A command already
// running finishes first.
func (c *CartCommands) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.Close()
}

// ----------------------------------------------------------------------------
// Recorded mutations
// ----------------------------------------------------------------------------

// AddItem adds one unit of the product and records it.
func (c *CartCommands) AddItem(ctx context.Context, in domain.LineItemInput) (domain.LineItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, previous, err := c.cart.AddItem(ctx, in)
	if err != nil {
		return domain.LineItem{}, err
	}
	c.log.Record(domain.HistoryAction{
		Type:             domain.ActionAdd,
		Item:             &item,
		PreviousQuantity: previous,
		Position:         c.position(item.ProductID),
	})
	return item, nil
}

// RemoveItem deletes the product's line. Removing an absent product records
// nothing.
func (c *CartCommands) RemoveItem(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, pos, existed, err := c.cart.RemoveItem(ctx, productID)
	if err != nil || !existed {
		return err
	}
	c.log.Record(domain.HistoryAction{
		Type:             domain.ActionRemove,
		Item:             &removed,
		PreviousQuantity: removed.Quantity,
		Position:         pos,
	})
	return nil
}

// UpdateQuantity sets the product's quantity; zero or less removes the line.
// Updates that change nothing are not recorded.
func (c *CartCommands) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	before, pos, existed, err := c.cart.UpdateQuantity(ctx, productID, quantity)
	if err != nil || !existed {
		return err
	}
	if quantity < 0 {
		quantity = 0
	}
	if before.Quantity == quantity {
		return nil
	}
	after := before
	after.Quantity = quantity
	c.log.Record(domain.HistoryAction{
		Type:             domain.ActionUpdate,
		Item:             &after,
		PreviousQuantity: before.Quantity,
		Position:         pos,
	})
	return nil
}

// Clear empties the cart. Clearing an empty cart records nothing.
func (c *CartCommands) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleared, err := c.cart.ClearCart(ctx)
	if err != nil || len(cleared) == 0 {
		return err
	}
	c.log.Record(domain.HistoryAction{Type: domain.ActionClear, Items: cleared})
	return nil
}

// ----------------------------------------------------------------------------
// Undo / redo
// ----------------------------------------------------------------------------

// Undo reverts the most recent recorded action. ok is false when there is
// nothing to undo.
func (c *CartCommands) Undo(ctx context.Context) (action domain.HistoryAction, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	action, ok = c.log.Undo()
	if !ok {
		return action, false, nil
	}
	if err := c.applyInverse(ctx, action); err != nil {
		return action, true, fmt.Errorf("undo %s: %w", action.Type, err)
	}
	logger.WithContext(ctx, c.logger).DebugContext(ctx, "cart action undone",
		slog.String("action", string(action.Type)),
	)
	return action, true, nil
}

// Redo re-applies the most recently undone action. ok is false when there is
// nothing to redo.
func (c *CartCommands) Redo(ctx context.Context) (action domain.HistoryAction, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	action, ok = c.log.Redo()
	if !ok {
		return action, false, nil
	}
	if err := c.applyForward(ctx, action); err != nil {
		return action, true, fmt.Errorf("redo %s: %w", action.Type, err)
	}
	logger.WithContext(ctx, c.logger).DebugContext(ctx, "cart action redone",
		slog.String("action", string(action.Type)),
	)
	return action, true, nil
}

// CanUndo reports whether there is an action to undo.
func (c *CartCommands) CanUndo() bool { return c.log.CanUndo() }

// CanRedo reports whether there is an action to redo.
func (c *CartCommands) CanRedo() bool { return c.log.CanRedo() }

// ClearHistory forgets every recorded action without touching the cart.
func (c *CartCommands) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Clear()
}

func (c *CartCommands) applyInverse(ctx context.Context, a domain.HistoryAction) error {
	switch a.Type {
	case domain.ActionAdd:
		if a.PreviousQuantity == 0 {
			_, _, _, err := c.cart.RemoveItem(ctx, a.Item.ProductID)
			return err
		}
		return c.cart.RestoreItem(ctx, withQuantity(*a.Item, a.PreviousQuantity), a.Position)
	case domain.ActionRemove:
		return c.cart.RestoreItem(ctx, *a.Item, a.Position)
	case domain.ActionUpdate:
		// RestoreItem covers both an update that kept the line and one that
		// removed it.
		return c.cart.RestoreItem(ctx, withQuantity(*a.Item, a.PreviousQuantity), a.Position)
	case domain.ActionClear:
		return c.cart.ReplaceAll(ctx, a.Items)
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

func (c *CartCommands) applyForward(ctx context.Context, a domain.HistoryAction) error {
	switch a.Type {
	case domain.ActionAdd:
		return c.cart.RestoreItem(ctx, *a.Item, a.Position)
	case domain.ActionRemove:
		_, _, _, err := c.cart.RemoveItem(ctx, a.Item.ProductID)
		return err
	case domain.ActionUpdate:
		_, _, _, err := c.cart.UpdateQuantity(ctx, a.Item.ProductID, a.Item.Quantity)
		return err
	case domain.ActionClear:
		_, err := c.cart.ClearCart(ctx)
		return err
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

func (c *CartCommands) position(productID string) int {
	for i, it := range c.cart.Items() {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func withQuantity(item domain.LineItem, quantity int) domain.LineItem {
	item.Quantity = quantity
	return item
}

// ----------------------------------------------------------------------------
// Reads
// ----------------------------------------------------------------------------

// Items returns the cart lines in order.
func (c *CartCommands) Items() []domain.LineItem { return c.cart.Items() }

// Version returns the cart's change counter.
func (c *CartCommands) Version() uint64 { return c.cart.Version() }

// Find returns the product's line.
func (c *CartCommands) Find(productID string) (domain.LineItem, bool) {
	return c.cart.Get(productID)
}

// Summary returns the memoized cart aggregates.
func (c *CartCommands) Summary() selector.Summary { return c.summary.Get() }

// Subscribe registers a read-only listener on the cart.
func (c *CartCommands) Subscribe(l store.Listener[domain.LineItem]) (unsubscribe func()) {
	return c.cart.Subscribe(l)
}
