package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartService interface {
	GetCartProducts(ctx context.Context, user *domain.User) ([]domain.CartLine, error)
	AddToCart(ctx context.Context, user *domain.User, productID primitive.ObjectID) ([]domain.CartItem, error)
	RemoveAllFromCart(ctx context.Context, user *domain.User) ([]domain.CartItem, error)
	RemoveFromCart(ctx context.Context, user *domain.User, productID primitive.ObjectID) ([]domain.CartItem, error)
	UpdateQuantity(ctx context.Context, user *domain.User, productID primitive.ObjectID, quantity int) ([]domain.CartItem, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
	log     zerolog.Logger
}

func NewCartHandler(carts CartService, timeout time.Duration, log zerolog.Logger) *CartHandler {
	return &CartHandler{carts: carts, timeout: timeout, log: log}
}

type CartItemRequestDTO struct {
	ProductID string `json:"productId"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	lines, err := h.carts.GetCartProducts(ctx, user)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

// POST /api/cart
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req CartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id", nil)
		return
	}

	items, err := h.carts.AddToCart(ctx, user, productID)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// DELETE /api/cart removes one product when productId is given, else everything.
func (h *CartHandler) RemoveAllFromCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req CartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	var (
		items []domain.CartItem
		err   error
	)
	if req.ProductID == "" {
		items, err = h.carts.RemoveAllFromCart(ctx, user)
	} else {
		productID, errID := primitive.ObjectIDFromHex(req.ProductID)
		if errID != nil {
			respondError(w, http.StatusBadRequest, "Invalid product id", nil)
			return
		}
		items, err = h.carts.RemoveFromCart(ctx, user, productID)
	}
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// PUT|PATCH /api/cart/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id", nil)
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "Quantity is required", nil)
		return
	}

	items, err := h.carts.UpdateQuantity(ctx, user, productID, *req.Quantity)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, items)
}
