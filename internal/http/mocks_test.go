package http

import (
	"context"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserLoaderMock struct {
	users map[primitive.ObjectID]*domain.User
	err   error
}

func (m UserLoaderMock) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type CartServiceMock struct {
	lines []domain.CartLine
	items []domain.CartItem
	err   error

	calls     []string
	productID primitive.ObjectID
	quantity  int
}

func (m *CartServiceMock) GetCartProducts(context.Context, *domain.User) ([]domain.CartLine, error) {
	m.calls = append(m.calls, "get")
	return m.lines, m.err
}

func (m *CartServiceMock) AddToCart(_ context.Context, _ *domain.User, productID primitive.ObjectID) ([]domain.CartItem, error) {
	m.calls = append(m.calls, "add")
	m.productID = productID
	return m.items, m.err
}

func (m *CartServiceMock) RemoveAllFromCart(context.Context, *domain.User) ([]domain.CartItem, error) {
	m.calls = append(m.calls, "removeAll")
	return m.items, m.err
}

func (m *CartServiceMock) RemoveFromCart(_ context.Context, _ *domain.User, productID primitive.ObjectID) ([]domain.CartItem, error) {
	m.calls = append(m.calls, "remove")
	m.productID = productID
	return m.items, m.err
}

func (m *CartServiceMock) UpdateQuantity(_ context.Context, _ *domain.User, productID primitive.ObjectID, quantity int) ([]domain.CartItem, error) {
	m.calls = append(m.calls, "update")
	m.productID = productID
	m.quantity = quantity
	return m.items, m.err
}

type CouponServiceMock struct {
	coupon *domain.Coupon
	err    error
	code   string
}

func (m *CouponServiceMock) GetCoupon(context.Context, primitive.ObjectID) (*domain.Coupon, error) {
	return m.coupon, m.err
}

func (m *CouponServiceMock) ValidateCoupon(_ context.Context, _ primitive.ObjectID, code string) (*domain.Coupon, error) {
	m.code = code
	return m.coupon, m.err
}

type CheckoutServiceMock struct {
	result *service.CheckoutSessionResult
	order  *domain.Order
	err    error

	products   []service.CheckoutProduct
	couponCode string
	sessionID  string
}

func (m *CheckoutServiceMock) CreateCheckoutSession(_ context.Context, _ primitive.ObjectID, products []service.CheckoutProduct, couponCode string) (*service.CheckoutSessionResult, error) {
	m.products = products
	m.couponCode = couponCode
	return m.result, m.err
}

func (m *CheckoutServiceMock) CheckoutSuccess(_ context.Context, sessionID string) (*domain.Order, error) {
	m.sessionID = sessionID
	return m.order, m.err
}

type AnalyticsServiceMock struct {
	summary *domain.AnalyticsSummary
	daily   []domain.DailySales
	err     error

	start, end time.Time
}

func (m *AnalyticsServiceMock) GetAnalyticsData(context.Context) (*domain.AnalyticsSummary, error) {
	return m.summary, m.err
}

func (m *AnalyticsServiceMock) GetDailySalesData(_ context.Context, start, end time.Time) ([]domain.DailySales, error) {
	m.start, m.end = start, end
	return m.daily, m.err
}

type ProductServiceMock struct {
	products []domain.Product
	product  *domain.Product
	err      error

	category string
	input    service.CreateProductInput
	id       primitive.ObjectID
}

func (m *ProductServiceMock) List(context.Context) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *ProductServiceMock) Featured(context.Context) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *ProductServiceMock) ByCategory(_ context.Context, category string) ([]domain.Product, error) {
	m.category = category
	return m.products, m.err
}

func (m *ProductServiceMock) Recommended(context.Context) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *ProductServiceMock) Create(_ context.Context, in service.CreateProductInput) (*domain.Product, error) {
	m.input = in
	return m.product, m.err
}

func (m *ProductServiceMock) Delete(_ context.Context, id primitive.ObjectID) error {
	m.id = id
	return m.err
}

func (m *ProductServiceMock) ToggleFeatured(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.id = id
	return m.product, m.err
}
