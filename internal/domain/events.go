package domain

import "time"

const EventTypeOrderCreated = "order.created"

// OrderCreatedEvent is published after an order has been persisted.
type OrderCreatedEvent struct {
	EventID         string    `json:"event_id"`
	OrderID         string    `json:"order_id"`
	UserID          string    `json:"user_id"`
	StripeSessionID string    `json:"stripe_session_id"`
	TotalAmount     float64   `json:"total_amount"`
	CreatedAt       time.Time `json:"created_at"`
}
