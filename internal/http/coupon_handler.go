package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CouponService interface {
	GetCoupon(ctx context.Context, userID primitive.ObjectID) (*domain.Coupon, error)
	ValidateCoupon(ctx context.Context, userID primitive.ObjectID, code string) (*domain.Coupon, error)
}

type CouponHandler struct {
	coupons CouponService
	timeout time.Duration
	log     zerolog.Logger
}

func NewCouponHandler(coupons CouponService, timeout time.Duration, log zerolog.Logger) *CouponHandler {
	return &CouponHandler{coupons: coupons, timeout: timeout, log: log}
}

type ValidateCouponRequestDTO struct {
	Code string `json:"code"`
}

type ValidateCouponResponseDTO struct {
	Message            string  `json:"message"`
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

// GET /api/coupons responds null when the user has no active coupon.
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	coupon, err := h.coupons.GetCoupon(ctx, user.ID)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, coupon)
}

// POST /api/coupons/validate
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req ValidateCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	coupon, err := h.coupons.ValidateCoupon(ctx, user.ID, req.Code)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, ValidateCouponResponseDTO{
		Message:            "Coupon is valid",
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
	})
}
