package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/selector"
	"github.com/utafrali/EcommerceGo/clientstate/internal/store"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/httputil"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/validator"
)

// WishlistHandler serves the wishlist of the request's session.
type WishlistHandler struct {
	logger *slog.Logger
}

// NewWishlistHandler creates a wishlist handler.
func NewWishlistHandler(logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{logger: logger}
}

// ReorderRequest is the body of PUT /wishlist/order.
type ReorderRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required"`
}

// WishlistView is the wishlist as returned by every wishlist endpoint.
type WishlistView struct {
	Items        []domain.WishlistEntry `json:"items"`
	Count        int                    `json:"count"`
	DisplayCount string                 `json:"display_count"`
}

// MembershipView answers "is this product saved".
type MembershipView struct {
	ProductID string `json:"product_id"`
	Saved     bool   `json:"saved"`
}

func wishlistView(wl *store.Wishlist) WishlistView {
	items := wl.Items()
	if items == nil {
		items = []domain.WishlistEntry{}
	}
	return WishlistView{Items: items, Count: len(items), DisplayCount: selector.DisplayCount(len(items))}
}

func (h *WishlistHandler) wishlist(r *http.Request) *store.Wishlist {
	return sessionFromContext(r.Context()).Wishlist
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, wishlistView(h.wishlist(r)))
}

// Contains handles GET /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	httputil.WriteData(w, http.StatusOK, MembershipView{
		ProductID: productID,
		Saved:     selector.Contains(h.wishlist(r).Items(), productID),
	})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in domain.WishlistInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	wl := h.wishlist(r)
	if _, err := wl.AddItem(r.Context(), in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wishlistView(wl))
}

// ToggleItem handles POST /api/v1/wishlist/toggle
func (h *WishlistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	var in domain.WishlistInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	added, err := h.wishlist(r).ToggleItem(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, MembershipView{ProductID: in.ProductID, Saved: added})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	wl := h.wishlist(r)
	if err := wl.RemoveItem(r.Context(), chi.URLParam(r, "productId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wishlistView(wl))
}

// Reorder handles PUT /api/v1/wishlist/order
func (h *WishlistHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	wl := h.wishlist(r)
	if err := wl.Reorder(r.Context(), req.ProductIDs); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wishlistView(wl))
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	wl := h.wishlist(r)
	if err := wl.ClearWishlist(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wishlistView(wl))
}
