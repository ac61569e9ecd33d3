package domain

import (
	"strings"
	"time"

	"github.com/utafrali/EcommerceGo/clientstate/pkg/validator"
)

// FavoriteEntry is a product marked as a favorite.
type FavoriteEntry struct {
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductPrice float64   `json:"product_price"`
	ProductImage string    `json:"product_image"`
	AddedAt      time.Time `json:"added_at"`
}

// EntryKey returns the product ID.
func (f FavoriteEntry) EntryKey() string { return f.ProductID }

// FavoriteInput holds the caller-supplied fields for a favorite.
type FavoriteInput struct {
	ProductID    string  `json:"product_id" validate:"required,max=128"`
	ProductName  string  `json:"product_name" validate:"required,max=500"`
	ProductPrice float64 `json:"product_price" validate:"gte=0"`
	ProductImage string  `json:"product_image"`
}

// Validate trims the product ID in place and returns an INVALID_INPUT AppError
// when the input is malformed.
func (in *FavoriteInput) Validate() error {
	in.ProductID = strings.TrimSpace(in.ProductID)
	return validator.ValidateInput(*in)
}

// NewFavoriteEntry builds a favorite stamped with now.
func NewFavoriteEntry(in FavoriteInput, now time.Time) FavoriteEntry {
	return FavoriteEntry{
		ProductID:    in.ProductID,
		ProductName:  in.ProductName,
		ProductPrice: in.ProductPrice,
		ProductImage: in.ProductImage,
		AddedAt:      now,
	}
}
