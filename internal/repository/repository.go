package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrCouponNotFound  = errors.New("coupon not found")
)

// Consumers depend on these interfaces, not on the MongoDB implementations.

type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SaveCart(ctx context.Context, id primitive.ObjectID, items []domain.CartItem) error
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error)
	ListFeatured(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Sample(ctx context.Context, size int) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (*domain.Product, error)
	Count(ctx context.Context) (int64, error)
}

type CouponRepository interface {
	FindActive(ctx context.Context, userID primitive.ObjectID, code string) (*domain.Coupon, error)
	FindActiveForUser(ctx context.Context, userID primitive.ObjectID) (*domain.Coupon, error)
	Create(ctx context.Context, coupon *domain.Coupon) error
	// Deactivate reports whether a coupon matched. A missing coupon is not an error.
	Deactivate(ctx context.Context, userID primitive.ObjectID, code string) (bool, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Totals(ctx context.Context) (domain.OrderTotals, error)
	// DailySales groups orders created in [start, end) by UTC calendar day, ascending.
	DailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error)
}
