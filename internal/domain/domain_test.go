package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
)

// ============================================================================
// LineItem
// ============================================================================

func TestNewLineItem_StartsAtOne(t *testing.T) {
	li := NewLineItem(LineItemInput{ProductID: "p1", Name: "Hoodie", Price: 89.9, Image: "/h.jpg"})

	assert.NotEmpty(t, li.ID)
	assert.Equal(t, "p1", li.EntryKey())
	assert.Equal(t, 1, li.Quantity)
	assert.Equal(t, "/h.jpg", li.Image)
}

func TestLineItem_Subtotal(t *testing.T) {
	li := LineItem{Price: 12.5, Quantity: 4}
	assert.InDelta(t, 50.0, li.Subtotal(), 1e-9)
}

func TestLineItemInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      LineItemInput
		wantErr bool
		field   string
	}{
		{"valid", LineItemInput{ProductID: "p1", Name: "Hoodie", Price: 89.9}, false, ""},
		{"free item", LineItemInput{ProductID: "p1", Name: "Sticker", Price: 0}, false, ""},
		{"missing product id", LineItemInput{Name: "Hoodie", Price: 1}, true, "product_id"},
		{"blank product id", LineItemInput{ProductID: "   ", Name: "Hoodie", Price: 1}, true, "product_id"},
		{"negative price", LineItemInput{ProductID: "p1", Name: "Hoodie", Price: -1}, true, "price"},
		{"missing name", LineItemInput{ProductID: "p1", Price: 1}, true, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := in.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestLineItemInput_ValidateTrims(t *testing.T) {
	in := LineItemInput{ProductID: "  p1 ", Name: "Hoodie"}
	require.NoError(t, in.Validate())
	assert.Equal(t, "p1", in.ProductID)
}

// ============================================================================
// Wishlist / favorites
// ============================================================================

func TestNewWishlistEntry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewWishlistEntry(WishlistInput{ProductID: "p2", Name: "Cap", Category: "hats"}, 3, now)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "p2", e.EntryKey())
	assert.Equal(t, 3, e.Order)
	assert.Equal(t, now, e.AddedAt)
	assert.Equal(t, "hats", e.Category)
}

func TestWishlistInput_Validate(t *testing.T) {
	in := WishlistInput{Name: "Cap"}
	assert.True(t, errors.Is(in.Validate(), apperrors.ErrInvalidInput))
}

func TestFavoriteInput_Validate(t *testing.T) {
	in := FavoriteInput{ProductID: "p3", ProductName: "Mug", ProductPrice: -2}
	assert.True(t, errors.Is(in.Validate(), apperrors.ErrInvalidInput))

	ok := FavoriteInput{ProductID: "p3", ProductName: "Mug", ProductPrice: 2}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, "p3", NewFavoriteEntry(ok, time.Now()).EntryKey())
}
