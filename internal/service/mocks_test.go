package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserRepository implements repository.UserRepository in memory
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
	err   error
	saves int
}

func newFakeUserRepository(users ...*domain.User) *fakeUserRepository {
	r := &fakeUserRepository{users: map[primitive.ObjectID]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepository) SaveCart(_ context.Context, id primitive.ObjectID, items []domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	r.saves++
	u.CartItems = append([]domain.CartItem{}, items...)
	return nil
}

func (r *fakeUserRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.users)), nil
}

func (r *fakeUserRepository) cart(id primitive.ObjectID) []domain.CartItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].CartItems
}

// fakeProductRepository implements repository.ProductRepository in memory
type fakeProductRepository struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
	featured int // ListFeatured calls
}

func (r *fakeProductRepository) List(context.Context) ([]domain.Product, error) {
	return r.filter(func(domain.Product) bool { return true })
}

func (r *fakeProductRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *fakeProductRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	set := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return r.filter(func(p domain.Product) bool { return set[p.ID] })
}

func (r *fakeProductRepository) ListFeatured(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	r.featured++
	r.mu.Unlock()
	return r.filter(func(p domain.Product) bool { return p.IsFeatured })
}

func (r *fakeProductRepository) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return p.Category == category })
}

func (r *fakeProductRepository) Sample(_ context.Context, size int) ([]domain.Product, error) {
	all, err := r.filter(func(domain.Product) bool { return true })
	if err != nil {
		return nil, err
	}
	if len(all) > size {
		all = all[:size]
	}
	return all, nil
}

func (r *fakeProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	p.ID = primitive.NewObjectID()
	r.products = append(r.products, *p)
	return nil
}

func (r *fakeProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (r *fakeProductRepository) SetFeatured(_ context.Context, id primitive.ObjectID, featured bool) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.products {
		if r.products[i].ID == id {
			r.products[i].IsFeatured = featured
			cp := r.products[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *fakeProductRepository) Count(context.Context) (int64, error) {
	all, err := r.List(context.Background())
	return int64(len(all)), err
}

func (r *fakeProductRepository) filter(keep func(domain.Product) bool) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.Product{}
	for _, p := range r.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeCouponRepository implements repository.CouponRepository in memory
type fakeCouponRepository struct {
	mu      sync.Mutex
	coupons []*domain.Coupon
	err     error
}

func (r *fakeCouponRepository) FindActive(_ context.Context, userID primitive.ObjectID, code string) (*domain.Coupon, error) {
	return r.find(func(c *domain.Coupon) bool { return c.UserID == userID && c.Code == code && c.IsActive })
}

func (r *fakeCouponRepository) FindActiveForUser(_ context.Context, userID primitive.ObjectID) (*domain.Coupon, error) {
	return r.find(func(c *domain.Coupon) bool { return c.UserID == userID && c.IsActive })
}

func (r *fakeCouponRepository) Create(_ context.Context, c *domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	c.ID = primitive.NewObjectID()
	cp := *c
	r.coupons = append(r.coupons, &cp)
	return nil
}

func (r *fakeCouponRepository) Deactivate(_ context.Context, userID primitive.ObjectID, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, c := range r.coupons {
		if c.UserID == userID && c.Code == code {
			c.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCouponRepository) CodeExists(_ context.Context, code string) (bool, error) {
	c, err := r.find(func(c *domain.Coupon) bool { return c.Code == code })
	if err == repository.ErrCouponNotFound {
		return false, nil
	}
	return c != nil, err
}

func (r *fakeCouponRepository) find(match func(*domain.Coupon) bool) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, c := range r.coupons {
		if match(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCouponNotFound
}

func (r *fakeCouponRepository) all() []domain.Coupon {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Coupon, len(r.coupons))
	for i, c := range r.coupons {
		out[i] = *c
	}
	return out
}

// fakeOrderRepository implements repository.OrderRepository in memory
type fakeOrderRepository struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (r *fakeOrderRepository) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	o.ID = primitive.NewObjectID()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	r.orders = append(r.orders, *o)
	return nil
}

func (r *fakeOrderRepository) Totals(context.Context) (domain.OrderTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.OrderTotals{}, r.err
	}
	var t domain.OrderTotals
	for _, o := range r.orders {
		t.TotalSales++
		t.TotalRevenue += o.TotalAmount
	}
	return t, nil
}

func (r *fakeOrderRepository) DailySales(_ context.Context, start, end time.Time) ([]domain.DailySales, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	byDay := map[string]*domain.DailySales{}
	for _, o := range r.orders {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		day := o.CreatedAt.UTC().Format(domain.DayLayout)
		if byDay[day] == nil {
			byDay[day] = &domain.DailySales{Date: day}
		}
		byDay[day].Sales++
		byDay[day].Revenue += o.TotalAmount
	}
	out := []domain.DailySales{}
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeOrderRepository) all() []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Order{}, r.orders...)
}

// fakeProcessor implements payment.Processor
type fakeProcessor struct {
	mu        sync.Mutex
	sessions  map[string]*payment.Session
	requests  []*payment.SessionRequest
	coupons   []float64
	createErr error
	getErr    error
	couponErr error
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{sessions: map[string]*payment.Session{}}
}

func (p *fakeProcessor) CreateCheckoutSession(_ context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.requests = append(p.requests, req)
	s := &payment.Session{
		ID:            fmt.Sprintf("cs_test_%d", len(p.requests)),
		PaymentStatus: "unpaid",
		Metadata:      req.Metadata,
	}
	p.sessions[s.ID] = s
	return s, nil
}

func (p *fakeProcessor) GetCheckoutSession(_ context.Context, id string) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, p.getErr
	}
	s, ok := p.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", id)
	}
	cp := *s
	return &cp, nil
}

func (p *fakeProcessor) CreateCoupon(_ context.Context, percentOff float64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.couponErr != nil {
		return "", p.couponErr
	}
	p.coupons = append(p.coupons, percentOff)
	return fmt.Sprintf("coupon_%d", len(p.coupons)), nil
}

// markPaid simulates the buyer completing payment for amount cents.
func (p *fakeProcessor) markPaid(id string, amount int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[id].PaymentStatus = payment.PaymentStatusPaid
	p.sessions[id].AmountTotal = amount
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.OrderCreatedEvent
	err    error
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, e domain.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

// fakeCache implements cache.FeaturedCache
type fakeCache struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
	deletes  int
}

func (c *fakeCache) Get(context.Context) ([]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if c.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return c.products, nil
}

func (c *fakeCache) Set(_ context.Context, products []domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	return c.err
}

func (c *fakeCache) Delete(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = nil
	c.deletes++
	return c.err
}

func (c *fakeCache) get() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products
}
