package service

import (
	"context"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
)

type AnalyticsService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewAnalyticsService(users repository.UserRepository, products repository.ProductRepository, orders repository.OrderRepository) *AnalyticsService {
	return &AnalyticsService{users: users, products: products, orders: orders}
}

func (s *AnalyticsService) GetAnalyticsData(ctx context.Context) (*domain.AnalyticsSummary, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, upstream("count users", err)
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, upstream("count products", err)
	}
	totals, err := s.orders.Totals(ctx)
	if err != nil {
		return nil, upstream("aggregate orders", err)
	}

	return &domain.AnalyticsSummary{
		Users:        users,
		Products:     products,
		TotalSales:   totals.TotalSales,
		TotalRevenue: totals.TotalRevenue,
	}, nil
}

// GetDailySalesData reports one entry per UTC day from start through end
// inclusive. Orders are matched on [start, end), so an end at midnight always
// reports zero for its own day.
func (s *AnalyticsService) GetDailySalesData(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	start, end = start.UTC(), end.UTC()
	if end.Before(start) {
		return nil, invalidInput("end date must not be before start date")
	}

	rows, err := s.orders.DailySales(ctx, start, end)
	if err != nil {
		return nil, upstream("aggregate daily sales", err)
	}
	byDate := make(map[string]domain.DailySales, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}

	var days []domain.DailySales
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(domain.DayLayout)
		row, ok := byDate[date]
		if !ok {
			row = domain.DailySales{Date: date}
		}
		days = append(days, row)
	}
	return days, nil
}
