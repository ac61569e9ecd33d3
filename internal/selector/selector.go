// Package selector holds pure read-only projections over store state.
// Selectors never mutate or persist.
package selector

import (
	"math"
	"strconv"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
)

// Display cap for badge counts.
const (
	MaxDisplayCount  = 99
	CappedCountLabel = "99+"
)

// Keyed matches every store entry type.
type Keyed interface {
	EntryKey() string
}

// TotalItems returns the sum of quantities.
func TotalItems(items []domain.LineItem) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// TotalPrice returns the sum of price times quantity, rounded to cents.
func TotalPrice(items []domain.LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return math.Round(total*100) / 100
}

// Find returns the entry for productID. Absence is reported through ok.
func Find[T Keyed](items []T, productID string) (item T, ok bool) {
	for _, it := range items {
		if it.EntryKey() == productID {
			return it, true
		}
	}
	return item, false
}

// Contains reports whether productID is present.
func Contains[T Keyed](items []T, productID string) bool {
	_, ok := Find(items, productID)
	return ok
}

// IsEmpty reports whether there are no entries.
func IsEmpty[T any](items []T) bool {
	return len(items) == 0
}

// DisplayCount renders n for a badge, capped at MaxDisplayCount.
func DisplayCount(n int) string {
	if n > MaxDisplayCount {
		return CappedCountLabel
	}
	if n < 0 {
		n = 0
	}
	return strconv.Itoa(n)
}

// Summary is the cart view most UI components need at once.
type Summary struct {
	TotalItems   int     `json:"total_items"`
	TotalPrice   float64 `json:"total_price"`
	DisplayCount string  `json:"display_count"`
	IsEmpty      bool    `json:"is_empty"`
}

// CartSummary computes every cart aggregate in one pass over items.
func CartSummary(items []domain.LineItem) Summary {
	count := TotalItems(items)
	return Summary{
		TotalItems:   count,
		TotalPrice:   TotalPrice(items),
		DisplayCount: DisplayCount(count),
		IsEmpty:      IsEmpty(items),
	}
}
