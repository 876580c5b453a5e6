package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, userID primitive.ObjectID, products []service.CheckoutProduct, couponCode string) (*service.CheckoutSessionResult, error)
	CheckoutSuccess(ctx context.Context, sessionID string) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
	log      zerolog.Logger
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration, log zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, timeout: timeout, log: log}
}

type CreateCheckoutSessionRequestDTO struct {
	Products   []service.CheckoutProduct `json:"products"`
	CouponCode string                    `json:"couponCode"`
}

type CheckoutSuccessRequestDTO struct {
	SessionID string `json:"sessionId"`
}

type CheckoutSuccessResponseDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}

// POST /api/payments/create-checkout-session
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req CreateCheckoutSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Products) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid or empty products array", nil)
		return
	}

	result, err := h.checkout.CreateCheckoutSession(ctx, user.ID, req.Products, req.CouponCode)
	if err != nil {
		handleServiceError(w, h.log, err, "Error creating checkout session")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// POST /api/payments/checkout-success
func (h *CheckoutHandler) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutSuccessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	order, err := h.checkout.CheckoutSuccess(ctx, req.SessionID)
	if err != nil {
		handleServiceError(w, h.log, err, "Error processing successful checkout")
		return
	}
	if order == nil {
		respondJSON(w, http.StatusOK, CheckoutSuccessResponseDTO{
			Success: false,
			Message: "Payment not completed",
		})
		return
	}

	respondJSON(w, http.StatusOK, CheckoutSuccessResponseDTO{
		Success: true,
		Message: "Payment successful, order created, and coupon deactivated if used.",
		OrderID: order.ID.Hex(),
	})
}
