package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	ByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Recommended(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, in service.CreateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
}

type ProductHandler struct {
	products ProductService
	timeout  time.Duration
	log      zerolog.Logger
}

func NewProductHandler(products ProductService, timeout time.Duration, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{products: products, timeout: timeout, log: log}
}

type ProductsResponseDTO struct {
	Products []domain.Product `json:"products"`
}

// GET /api/products (admin)
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.products.List)
}

// GET /api/products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.Featured(ctx)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/products/category/{category}
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	h.respondList(w, r, func(ctx context.Context) ([]domain.Product, error) {
		return h.products.ByCategory(ctx, category)
	})
}

// GET /api/products/recommendations
func (h *ProductHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.Recommended(ctx)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// POST /api/products (admin)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	product, err := h.products.Create(ctx, req)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// PATCH /api/products/{id} (admin) flips isFeatured.
func (h *ProductHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id", nil)
		return
	}

	product, err := h.products.ToggleFeatured(ctx, id)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// DELETE /api/products/{id} (admin)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id", nil)
		return
	}

	if err := h.products.Delete(ctx, id); err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *ProductHandler) respondList(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]domain.Product, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := list(ctx)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, ProductsResponseDTO{Products: products})
}
