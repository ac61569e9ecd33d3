package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/store"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/httputil"
)

// FavoritesHandler serves the favorites of the request's session.
type FavoritesHandler struct {
	logger *slog.Logger
}

// NewFavoritesHandler creates a favorites handler.
func NewFavoritesHandler(logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{logger: logger}
}

// FavoritesView is the favorites list as returned by every favorites endpoint.
type FavoritesView struct {
	Items []domain.FavoriteEntry `json:"items"`
	Count int                    `json:"count"`
}

func favoritesView(f *store.Favorites) FavoritesView {
	items := f.Items()
	if items == nil {
		items = []domain.FavoriteEntry{}
	}
	return FavoritesView{Items: items, Count: len(items)}
}

func (h *FavoritesHandler) favorites(r *http.Request) *store.Favorites {
	return sessionFromContext(r.Context()).Favorites
}

// GetFavorites handles GET /api/v1/favorites
func (h *FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, favoritesView(h.favorites(r)))
}

// IsFavorite handles GET /api/v1/favorites/items/{productId}
func (h *FavoritesHandler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	httputil.WriteData(w, http.StatusOK, MembershipView{
		ProductID: productID,
		Saved:     h.favorites(r).IsFavorite(productID),
	})
}

// AddFavorite handles POST /api/v1/favorites/items
func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var in domain.FavoriteInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	f := h.favorites(r)
	if err := f.AddFavorite(r.Context(), in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, favoritesView(f))
}

// ToggleFavorite handles POST /api/v1/favorites/toggle
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var in domain.FavoriteInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	added, err := h.favorites(r).ToggleFavorite(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, MembershipView{ProductID: in.ProductID, Saved: added})
}

// RemoveFavorite handles DELETE /api/v1/favorites/items/{productId}
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	f := h.favorites(r)
	if err := f.RemoveFavorite(r.Context(), chi.URLParam(r, "productId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, favoritesView(f))
}

// ClearFavorites handles DELETE /api/v1/favorites
func (h *FavoritesHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	f := h.favorites(r)
	if err := f.ClearFavorites(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, favoritesView(f))
}
