package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

const recommendationCount = 3

type CreateProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

type ProductService struct {
	products repository.ProductRepository
	cache    cache.FeaturedCache
	sfg      singleflight.Group // Prevents cache stampede
	log      zerolog.Logger
}

func NewProductService(products repository.ProductRepository, featured cache.FeaturedCache, log zerolog.Logger) *ProductService {
	return &ProductService{
		products: products,
		cache:    featured,
		log:      log.With().Str("component", "products").Logger(),
	}
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, upstream("list products", err)
	}
	return products, nil
}

func (s *ProductService) Featured(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("featured", func() (interface{}, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("featured cache get failed")
		}

		products, err = s.products.ListFeatured(ctx)
		if err != nil {
			return nil, upstream("list featured products", err)
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), products); errSet != nil {
				s.log.Warn().Err(errSet).Msg("featured cache set failed")
			}
		}()
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (s *ProductService) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.products.ListByCategory(ctx, category)
	if err != nil {
		return nil, upstream("list products by category", err)
	}
	return products, nil
}

func (s *ProductService) Recommended(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.Sample(ctx, recommendationCount)
	if err != nil {
		return nil, upstream("sample products", err)
	}
	return products, nil
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Name == "":
		return nil, invalidInput("name is required")
	case in.Category == "":
		return nil, invalidInput("category is required")
	case in.Price < 0:
		return nil, invalidInput("price must not be negative")
	}

	product := &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		Category:    in.Category,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, upstream("create product", err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return notFound("product not found")
		}
		return upstream("get product", err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return notFound("product not found")
		}
		return upstream("delete product", err)
	}

	if product.IsFeatured {
		s.invalidateFeatured()
	}
	return nil
}

func (s *ProductService) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound("product not found")
		}
		return nil, upstream("get product", err)
	}

	updated, err := s.products.SetFeatured(ctx, id, !product.IsFeatured)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound("product not found")
		}
		return nil, upstream("toggle featured", err)
	}

	s.refreshFeatured(ctx)
	return updated, nil
}

// refreshFeatured rewrites the cache from the store; failures only cost a later miss.
func (s *ProductService) refreshFeatured(ctx context.Context) {
	products, err := s.products.ListFeatured(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("featured cache refresh failed")
		s.invalidateFeatured()
		return
	}
	if err := s.cache.Set(ctx, products); err != nil {
		s.log.Warn().Err(err).Msg("featured cache set failed")
	}
}

func (s *ProductService) invalidateFeatured() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx); err != nil {
		s.log.Warn().Err(err).Msg("featured cache invalidate failed")
	}
}
