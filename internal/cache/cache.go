package cache

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

type FeaturedCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
