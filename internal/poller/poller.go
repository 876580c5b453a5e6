package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/service"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const consumerGroup = "storefront-cart-cleaner"

// CartClearer empties a user's cart.
type CartClearer interface {
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Poller clears a buyer's cart once their order has been created.
type Poller struct {
	carts  CartClearer
	reader messageReader
	log    zerolog.Logger
}

func NewPoller(carts CartClearer, log zerolog.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.OrderEventsTopic,
		GroupID:  consumerGroup,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{
		carts:  carts,
		reader: reader,
		log:    log.With().Str("component", "poller").Logger(),
	}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.log.Error().Err(err).Msg("error reading message")
			}
			continue
		}
		if err := p.handleMessage(ctx, m); err != nil {
			p.log.Error().Err(err).Int64("offset", m.Offset).Msg("failed to handle order event")
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Error().Err(err).Msg("error closing reader")
	}
}

func (p *Poller) handleMessage(ctx context.Context, m kafka.Message) error {
	if eventType := header(m, "event_type"); eventType != "" && eventType != domain.EventTypeOrderCreated {
		return nil
	}

	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("error parsing message: %w", err)
	}
	userID, err := primitive.ObjectIDFromHex(event.UserID)
	if err != nil {
		return fmt.Errorf("missing or invalid user_id %q", event.UserID)
	}

	err = p.carts.ClearCart(ctx, userID)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	p.log.Info().Str("user_id", event.UserID).Str("order_id", event.OrderID).Msg("cart cleared")
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
