package domain

import (
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/EcommerceGo/clientstate/pkg/validator"
)

// LineItem is one row in the cart, unique by product within a cart.
type LineItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// EntryKey returns the product ID, the cart's uniqueness key.
func (li LineItem) EntryKey() string { return li.ProductID }

// Subtotal returns price times quantity.
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

// LineItemInput holds the caller-supplied fields for adding a product to the cart.
// Any quantity the caller has in mind is ignored: an add always means "one more".
type LineItemInput struct {
	ProductID string  `json:"product_id" validate:"required,max=128"`
	Name      string  `json:"name" validate:"required,max=500"`
	Price     float64 `json:"price" validate:"gte=0"`
	Image     string  `json:"image"`
}

// Validate trims the product ID in place and returns an INVALID_INPUT AppError
// when the input is malformed.
func (in *LineItemInput) Validate() error {
	in.ProductID = strings.TrimSpace(in.ProductID)
	return validator.ValidateInput(*in)
}

// NewLineItem builds a fresh line item at quantity 1.
func NewLineItem(in LineItemInput) LineItem {
	return LineItem{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		Name:      in.Name,
		Price:     in.Price,
		Image:     in.Image,
		Quantity:  1,
	}
}
