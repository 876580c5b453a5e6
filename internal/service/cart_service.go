package service

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartService keeps the cart list stored on the user document. Every mutation
// is a read-modify-write of that document without concurrency control.
type CartService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	log      zerolog.Logger
}

func NewCartService(users repository.UserRepository, products repository.ProductRepository, log zerolog.Logger) *CartService {
	return &CartService{
		users:    users,
		products: products,
		log:      log.With().Str("component", "cart").Logger(),
	}
}

// GetCartProducts joins the cart with the catalog. Items whose product no
// longer exists are dropped.
func (s *CartService) GetCartProducts(ctx context.Context, user *domain.User) ([]domain.CartLine, error) {
	ids := make([]primitive.ObjectID, len(user.CartItems))
	for i, item := range user.CartItems {
		ids[i] = item.ProductID
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, upstream("load cart products", err)
	}
	byID := make(map[primitive.ObjectID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]domain.CartLine, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{Product: p, Quantity: item.Quantity})
	}
	return lines, nil
}

func (s *CartService) AddToCart(ctx context.Context, user *domain.User, productID primitive.ObjectID) ([]domain.CartItem, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound("product not found")
		}
		return nil, upstream("validate product", err)
	}
	return s.save(ctx, user, domain.AddToCart(user.CartItems, productID))
}

func (s *CartService) RemoveAllFromCart(ctx context.Context, user *domain.User) ([]domain.CartItem, error) {
	return s.save(ctx, user, []domain.CartItem{})
}

func (s *CartService) RemoveFromCart(ctx context.Context, user *domain.User, productID primitive.ObjectID) ([]domain.CartItem, error) {
	return s.save(ctx, user, domain.RemoveFromCart(user.CartItems, productID))
}

func (s *CartService) UpdateQuantity(ctx context.Context, user *domain.User, productID primitive.ObjectID, quantity int) ([]domain.CartItem, error) {
	if quantity < 0 {
		return nil, invalidInput("quantity must not be negative")
	}
	items, err := domain.SetCartQuantity(user.CartItems, productID, quantity)
	if err != nil {
		return nil, notFound("product not found in cart")
	}
	return s.save(ctx, user, items)
}

// ClearCart empties the cart of a user that is not loaded in the request context.
func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.users.SaveCart(ctx, userID, []domain.CartItem{}); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound("user not found")
		}
		return upstream("clear cart", err)
	}
	return nil
}

func (s *CartService) save(ctx context.Context, user *domain.User, items []domain.CartItem) ([]domain.CartItem, error) {
	if err := s.users.SaveCart(ctx, user.ID, items); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to save cart")
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user not found")
		}
		return nil, upstream("save cart", err)
	}
	user.CartItems = items
	return items, nil
}
