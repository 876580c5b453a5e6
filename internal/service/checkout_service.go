package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	metadataUserID     = "userId"
	metadataCouponCode = "couponCode"
	metadataProducts   = "products"
)

// OrderEventPublisher is notified after an order has been stored.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error
}

// CheckoutProduct is a cart line as submitted by the client at checkout.
type CheckoutProduct struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

type CheckoutSessionResult struct {
	ID          string  `json:"id"`
	TotalAmount float64 `json:"totalAmount"`
}

// productSnapshot is the typed payload stored in session metadata. Its price,
// not the catalog, is what the order records.
type productSnapshot struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type CheckoutService struct {
	coupons   repository.CouponRepository
	orders    repository.OrderRepository
	rewards   *CouponService
	processor payment.Processor
	events    OrderEventPublisher
	clientURL string
	log       zerolog.Logger
}

func NewCheckoutService(
	coupons repository.CouponRepository,
	orders repository.OrderRepository,
	rewards *CouponService,
	processor payment.Processor,
	events OrderEventPublisher,
	clientURL string,
	log zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		coupons:   coupons,
		orders:    orders,
		rewards:   rewards,
		processor: processor,
		events:    events,
		clientURL: strings.TrimRight(clientURL, "/"),
		log:       log.With().Str("component", "checkout").Logger(),
	}
}

// CreateCheckoutSession prices the submitted products in cents, applies an
// active coupon of the user once to the aggregate total and opens a payment
// session. Totals of 20000 cents or more earn a reward coupon immediately,
// whether or not the session is ever paid.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID primitive.ObjectID, products []CheckoutProduct, couponCode string) (*CheckoutSessionResult, error) {
	if len(products) == 0 {
		return nil, invalidInput("invalid or empty products array")
	}

	var total int64
	lineItems := make([]payment.LineItem, 0, len(products))
	snapshot := make([]productSnapshot, 0, len(products))
	for _, p := range products {
		if _, err := primitive.ObjectIDFromHex(p.ID); err != nil {
			return nil, invalidInput("invalid product id %q", p.ID)
		}
		if p.Quantity < 1 {
			return nil, invalidInput("quantity of product %s must be at least 1", p.ID)
		}
		if p.Price < 0 {
			return nil, invalidInput("price of product %s must not be negative", p.ID)
		}

		unitAmount := domain.ToMinorUnits(p.Price)
		total += unitAmount * int64(p.Quantity)

		lineItems = append(lineItems, payment.LineItem{
			Name:       p.Name,
			Image:      p.Image,
			UnitAmount: unitAmount,
			Quantity:   int64(p.Quantity),
		})
		snapshot = append(snapshot, productSnapshot{ID: p.ID, Quantity: p.Quantity, Price: p.Price})
	}

	var couponIDs []string
	if couponCode != "" {
		coupon, err := s.coupons.FindActive(ctx, userID, couponCode)
		if err != nil && !errors.Is(err, repository.ErrCouponNotFound) {
			return nil, upstream("find coupon", err)
		}
		if coupon != nil {
			total -= domain.DiscountAmount(total, coupon.DiscountPercentage)

			processorCouponID, err := s.processor.CreateCoupon(ctx, coupon.DiscountPercentage)
			if err != nil {
				return nil, upstream("create processor coupon", err)
			}
			couponIDs = append(couponIDs, processorCouponID)
		}
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product snapshot: %w", err)
	}

	session, err := s.processor.CreateCheckoutSession(ctx, &payment.SessionRequest{
		LineItems:  lineItems,
		Mode:       payment.ModePayment,
		SuccessURL: s.clientURL + "/purchase-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.clientURL + "/purchase-cancel",
		CouponIDs:  couponIDs,
		Metadata: map[string]string{
			metadataUserID:     userID.Hex(),
			metadataCouponCode: couponCode,
			metadataProducts:   string(snapshotJSON),
		},
	})
	if err != nil {
		return nil, upstream("create checkout session", err)
	}

	if total >= domain.RewardThresholdMinor {
		if _, err := s.rewards.MintRewardCoupon(ctx, userID); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("user_id", userID.Hex()).
		Str("session_id", session.ID).
		Int64("total_minor", total).
		Msg("checkout session created")

	return &CheckoutSessionResult{
		ID:          session.ID,
		TotalAmount: domain.FromMinorUnits(total),
	}, nil
}

// CheckoutSuccess turns a paid session into an order. An unpaid session
// yields (nil, nil) and changes nothing. Repeated calls for the same paid
// session create one order each.
func (s *CheckoutService) CheckoutSuccess(ctx context.Context, sessionID string) (*domain.Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, invalidInput("sessionId is required")
	}

	session, err := s.processor.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, upstream("retrieve checkout session", err)
	}
	if !session.IsPaid() {
		s.log.Info().Str("session_id", sessionID).Str("payment_status", session.PaymentStatus).Msg("checkout session not paid")
		return nil, nil
	}

	userID, err := primitive.ObjectIDFromHex(session.Metadata[metadataUserID])
	if err != nil {
		return nil, invalidInput("session metadata has invalid userId")
	}
	products, err := decodeSnapshot(session.Metadata[metadataProducts])
	if err != nil {
		return nil, err
	}

	// Coupon deactivation and order creation are separate writes.
	if code := session.Metadata[metadataCouponCode]; code != "" {
		if _, err := s.coupons.Deactivate(ctx, userID, code); err != nil {
			return nil, upstream("deactivate coupon", err)
		}
	}

	order := &domain.Order{
		User:            userID,
		Products:        products,
		TotalAmount:     domain.FromMinorUnits(session.AmountTotal),
		StripeSessionID: sessionID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, upstream("create order", err)
	}

	s.log.Info().
		Str("order_id", order.ID.Hex()).
		Str("session_id", sessionID).
		Float64("total", order.TotalAmount).
		Msg("order created")

	s.publishOrderCreated(ctx, order)
	return order, nil
}

func (s *CheckoutService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	event := domain.OrderCreatedEvent{
		EventID:         uuid.NewString(),
		OrderID:         order.ID.Hex(),
		UserID:          order.User.Hex(),
		StripeSessionID: order.StripeSessionID,
		TotalAmount:     order.TotalAmount,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		s.log.Error().Err(err).Str("order_id", event.OrderID).Msg("failed to publish order created event")
	}
}

func decodeSnapshot(raw string) ([]domain.OrderProduct, error) {
	var snapshot []productSnapshot
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snapshot); err != nil {
		return nil, invalidInput("malformed products metadata: %v", err)
	}
	if len(snapshot) == 0 {
		return nil, invalidInput("products metadata is empty")
	}

	products := make([]domain.OrderProduct, len(snapshot))
	for i, p := range snapshot {
		id, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return nil, invalidInput("products metadata has invalid id %q", p.ID)
		}
		if p.Quantity < 1 || p.Price < 0 {
			return nil, invalidInput("products metadata has invalid quantity or price for %s", p.ID)
		}
		products[i] = domain.OrderProduct{ProductID: id, Quantity: p.Quantity, Price: p.Price}
	}
	return products, nil
}
