package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/clientstate/internal/command"
	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/selector"
	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/httputil"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/validator"
)

// CartHandler serves the cart commands of the request's session.
type CartHandler struct {
	logger *slog.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(logger *slog.Logger) *CartHandler {
	return &CartHandler{logger: logger}
}

// --- Request / response DTOs ---

// UpdateQuantityRequest is the body of PUT /cart/items/{productId}.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartView is the cart as returned by every cart endpoint.
type CartView struct {
	Items   []domain.LineItem `json:"items"`
	Summary selector.Summary  `json:"summary"`
	CanUndo bool              `json:"can_undo"`
	CanRedo bool              `json:"can_redo"`
}

// HistoryResult is returned by undo and redo.
type HistoryResult struct {
	Applied bool                  `json:"applied"`
	Action  *domain.HistoryAction `json:"action,omitempty"`
	Cart    CartView              `json:"cart"`
}

func cartView(c *command.CartCommands) CartView {
	items := c.Items()
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartView{
		Items:   items,
		Summary: c.Summary(),
		CanUndo: c.CanUndo(),
		CanRedo: c.CanRedo(),
	}
}

func (h *CartHandler) commands(r *http.Request) *command.CartCommands {
	return sessionFromContext(r.Context()).Cart
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, cartView(h.commands(r)))
}

// GetSummary handles GET /api/v1/cart/summary
func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.commands(r).Summary())
}

// GetItem handles GET /api/v1/cart/items/{productId}
func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	item, ok := h.commands(r).Find(productID)
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("cart item", productID), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, item)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in domain.LineItemInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	c := h.commands(r)
	if _, err := c.AddItem(r.Context(), in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cartView(c))
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	c := h.commands(r)
	if err := c.UpdateQuantity(r.Context(), chi.URLParam(r, "productId"), *req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cartView(c))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c := h.commands(r)
	if err := c.RemoveItem(r.Context(), chi.URLParam(r, "productId")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cartView(c))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.commands(r)
	if err := c.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cartView(c))
}

// Undo handles POST /api/v1/cart/undo
func (h *CartHandler) Undo(w http.ResponseWriter, r *http.Request) {
	c := h.commands(r)
	action, ok, err := c.Undo(r.Context())
	h.writeHistory(w, r, c, action, ok, err)
}

// Redo handles POST /api/v1/cart/redo
func (h *CartHandler) Redo(w http.ResponseWriter, r *http.Request) {
	c := h.commands(r)
	action, ok, err := c.Redo(r.Context())
	h.writeHistory(w, r, c, action, ok, err)
}

func (h *CartHandler) writeHistory(w http.ResponseWriter, r *http.Request, c *command.CartCommands, action domain.HistoryAction, ok bool, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	res := HistoryResult{Applied: ok, Cart: cartView(c)}
	if ok {
		res.Action = &action
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// decodeJSON reads the body into dst. Field validation is left to the stores.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}
