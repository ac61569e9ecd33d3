package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
	"github.com/utafrali/EcommerceGo/clientstate/internal/store"
)

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: "p1", Name: "Hoodie", Price: 89.9, Quantity: 2},
		{ProductID: "p2", Name: "Cap", Price: 19.99, Quantity: 1},
	}
}

// ============================================================================
// Aggregates
// ============================================================================

func TestTotals(t *testing.T) {
	items := sampleItems()
	assert.Equal(t, 3, TotalItems(items))
	assert.InDelta(t, 199.79, TotalPrice(items), 1e-9)

	assert.Zero(t, TotalItems(nil))
	assert.Zero(t, TotalPrice(nil))
}

func TestSelectorsAreIdempotentAndPure(t *testing.T) {
	items := sampleItems()
	before := append([]domain.LineItem(nil), items...)

	first := CartSummary(items)
	second := CartSummary(items)

	assert.Equal(t, first, second)
	assert.Equal(t, before, items, "selectors must not mutate their input")
}

// ============================================================================
// Lookup
// ============================================================================

func TestFind(t *testing.T) {
	items := sampleItems()

	got, ok := Find(items, "p2")
	require.True(t, ok)
	assert.Equal(t, "Cap", got.Name)

	got, ok = Find(items, "missing")
	assert.False(t, ok)
	assert.Equal(t, domain.LineItem{}, got)

	assert.True(t, Contains(items, "p1"))
	assert.False(t, Contains(items, ""))
}

func TestFind_WishlistEntries(t *testing.T) {
	entries := []domain.WishlistEntry{{ProductID: "w1"}, {ProductID: "w2"}}
	assert.True(t, Contains(entries, "w2"))
	assert.False(t, Contains([]domain.FavoriteEntry{}, "w2"))
}

// ============================================================================
// Display
// ============================================================================

func TestDisplayCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{99, "99"},
		{100, "99+"},
		{5000, "99+"},
		{-3, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayCount(tt.n), "n=%d", tt.n)
	}
}

func TestCartSummary_Empty(t *testing.T) {
	s := CartSummary(nil)
	assert.True(t, s.IsEmpty)
	assert.Equal(t, "0", s.DisplayCount)
}

// ============================================================================
// Memo
// ============================================================================

func TestMemo_RecomputesOnlyOnChange(t *testing.T) {
	cart := store.NewCart(store.Options{Provider: persistence.NewMemory()})
	ctx := context.Background()

	calls := 0
	memo := NewMemo[domain.LineItem, int](cart, func(items []domain.LineItem) int {
		calls++
		return TotalItems(items)
	})

	assert.Equal(t, 0, memo.Get())
	assert.Equal(t, 0, memo.Get())
	assert.Equal(t, 1, calls)

	_, _, err := cart.AddItem(ctx, domain.LineItemInput{ProductID: "p1", Name: "Hoodie", Price: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, memo.Get())
	assert.Equal(t, 2, calls)

	_, _, _, err = cart.RemoveItem(ctx, "absent")
	require.NoError(t, err)
	assert.Equal(t, 1, memo.Get())
	assert.Equal(t, 2, calls, "no-op mutation must not invalidate")
}
