package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/catalog"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/repository"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/service"
)

// CartAPI is what the handlers need from the cart service.
type CartAPI interface {
	GetCart(ctx context.Context, identity string) (*domain.Cart, error)
	AddItem(ctx context.Context, identity string, input service.AddItemInput) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, identity, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, identity, itemID string) error
	ClearCart(ctx context.Context, identity string) error
	InvalidateCache(ctx context.Context, identity string) error
}

type CartHandler struct {
	service CartAPI
}

func NewCartHandler(service CartAPI) *CartHandler {
	return &CartHandler{service: service}
}

type AddItemRequestDTO struct {
	ProductID      string                 `json:"product_id"`
	Quantity       int                    `json:"quantity"`
	Customizations []domain.Customization `json:"customizations,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  int64             `json:"subtotal"`
	Total     int64             `json:"total"`
}

type ItemResponse struct {
	Item domain.CartItem `json:"item"`
}

type StatusResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart identity")
		return
	}

	cart, err := h.service.GetCart(r.Context(), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	respondJSON(w, http.StatusOK, CartResponse{
		Items:     items,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		Total:     cart.Subtotal(),
	})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart identity")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must not be empty")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	item, err := h.service.AddItem(r.Context(), identity, service.AddItemInput{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		Customizations: req.Customizations,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, ItemResponse{Item: *item})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart identity")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must not be empty")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	item, err := h.service.UpdateQuantity(r.Context(), identity, itemID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ItemResponse{Item: *item})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart identity")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must not be empty")
		return
	}

	if err := h.service.RemoveItem(r.Context(), identity, itemID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart identity")
		return
	}

	if err := h.service.ClearCart(r.Context(), identity); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

// InvalidateCache is a best-effort signal; it acknowledges regardless of the
// cache outcome.
func (h *CartHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing cart identity")
		return
	}

	if err := h.service.InvalidateCache(r.Context(), identity); err != nil {
		log.Printf("cache invalidation failed for %s: %v", identity, err)
	}
	respondJSON(w, http.StatusAccepted, StatusResponse{Success: true})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, catalog.ErrInvalidCustomization):
		respondError(w, http.StatusBadRequest, "invalid_customizations", err.Error())
	case errors.Is(err, repository.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", "item not found in cart")
	case errors.Is(err, repository.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", "cart not found")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
