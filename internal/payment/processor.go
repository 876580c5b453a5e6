package payment

import (
	"context"
	"errors"
)

const (
	ModePayment       = "payment"
	PaymentStatusPaid = "paid"
	Currency          = "usd"
)

var ErrUnavailable = errors.New("payment processor unavailable")

// Processor is the subset of the hosted payment API the storefront uses.
type Processor interface {
	CreateCheckoutSession(ctx context.Context, req *SessionRequest) (*Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*Session, error)
	// CreateCoupon registers a one-time percent-off discount and returns its processor id.
	CreateCoupon(ctx context.Context, percentOff float64) (string, error)
}

type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	LineItems  []LineItem
	Mode       string
	SuccessURL string
	CancelURL  string
	CouponIDs  []string
	Metadata   map[string]string
}

type Session struct {
	ID            string
	PaymentStatus string
	AmountTotal   int64
	Metadata      map[string]string
}

func (s *Session) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}
