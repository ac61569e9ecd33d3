package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/EcommerceGo/clientstate/pkg/validator"
)

// WishlistEntry is a product saved for later. Order is the insertion sequence
// number and only changes through an explicit reorder.
type WishlistEntry struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	AddedAt   time.Time `json:"added_at"`
	Order     int       `json:"order"`
}

// EntryKey returns the product ID.
func (e WishlistEntry) EntryKey() string { return e.ProductID }

// WishlistInput holds the caller-supplied fields for a wishlist entry.
type WishlistInput struct {
	ProductID string  `json:"product_id" validate:"required,max=128"`
	Name      string  `json:"name" validate:"required,max=500"`
	Price     float64 `json:"price" validate:"gte=0"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
}

// Validate trims the product ID in place and returns an INVALID_INPUT AppError
// when the input is malformed.
func (in *WishlistInput) Validate() error {
	in.ProductID = strings.TrimSpace(in.ProductID)
	return validator.ValidateInput(*in)
}

// NewWishlistEntry builds an entry positioned at order.
func NewWishlistEntry(in WishlistInput, order int, now time.Time) WishlistEntry {
	return WishlistEntry{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		Name:      in.Name,
		Price:     in.Price,
		Image:     in.Image,
		Category:  in.Category,
		AddedAt:   now,
		Order:     order,
	}
}
