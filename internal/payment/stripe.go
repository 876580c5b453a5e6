package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

type StripeProcessor struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker[any]
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	settings := gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// card and validation errors are answers, not outages
		IsSuccessful: func(err error) bool {
			var stripeErr *stripe.Error
			if errors.As(err, &stripeErr) {
				return stripeErr.HTTPStatusCode < 500
			}
			return err == nil
		},
	}

	return &StripeProcessor{
		api:     client.New(secretKey, nil),
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (p *StripeProcessor) CreateCheckoutSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(req.Mode),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx

	for _, item := range req.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Image != "" {
			productData.Images = stripe.StringSlice([]string{item.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	for _, couponID := range req.CouponIDs {
		params.Discounts = append(params.Discounts, &stripe.CheckoutSessionDiscountParams{
			Coupon: stripe.String(couponID),
		})
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	res, err := p.breaker.Execute(func() (any, error) {
		return p.api.CheckoutSessions.New(params)
	})
	if err != nil {
		return nil, wrapError("create checkout session", err)
	}
	return toSession(res.(*stripe.CheckoutSession)), nil
}

func (p *StripeProcessor) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	res, err := p.breaker.Execute(func() (any, error) {
		return p.api.CheckoutSessions.Get(id, params)
	})
	if err != nil {
		return nil, wrapError("retrieve checkout session", err)
	}
	return toSession(res.(*stripe.CheckoutSession)), nil
}

func (p *StripeProcessor) CreateCoupon(ctx context.Context, percentOff float64) (string, error) {
	params := &stripe.CouponParams{
		PercentOff: stripe.Float64(percentOff),
		Duration:   stripe.String(string(stripe.CouponDurationOnce)),
	}
	params.Context = ctx

	res, err := p.breaker.Execute(func() (any, error) {
		return p.api.Coupons.New(params)
	})
	if err != nil {
		return "", wrapError("create coupon", err)
	}
	return res.(*stripe.Coupon).ID, nil
}

func toSession(s *stripe.CheckoutSession) *Session {
	return &Session{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Metadata:      s.Metadata,
	}
}

func wrapError(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("failed to %s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
