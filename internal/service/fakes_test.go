package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/repo"
	"github.com/localbazaar/market-service/internal/service"
	"github.com/localbazaar/market-service/pkg/trm"
)

// memStore is an in-memory stand-in for the postgres repos. Its Do snapshots
// state and restores it on error, mirroring transaction rollback.
type memStore struct {
	shops    map[string]entities.Shop
	products map[string]entities.Product
	orders   map[string]entities.Order
	keys     map[string][]string
	reviews  map[string]entities.Review

	notices []notice
	events  []service.OrderEvent
}

type notice struct {
	userID string
	title  string
	kind   entities.NotificationKind
}

func newMemStore() *memStore {
	return &memStore{
		shops:    make(map[string]entities.Shop),
		products: make(map[string]entities.Product),
		orders:   make(map[string]entities.Order),
		keys:     make(map[string][]string),
		reviews:  make(map[string]entities.Review),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// trm.Manager

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

func (m *memStore) BeginTx(ctx context.Context) (context.Context, trm.Transaction, error) {
	return ctx, noopTx{}, nil
}

func (m *memStore) Do(ctx context.Context, cb func(ctx context.Context) error) error {
	shops := copyMap(m.shops)
	products := copyMap(m.products)
	orders := copyMap(m.orders)
	keys := make(map[string][]string, len(m.keys))
	for k, v := range m.keys {
		keys[k] = append([]string(nil), v...)
	}
	reviews := copyMap(m.reviews)
	notices := append([]notice(nil), m.notices...)

	if err := cb(ctx); err != nil {
		m.shops, m.products, m.orders, m.keys, m.reviews, m.notices =
			shops, products, orders, keys, reviews, notices
		return err
	}
	return nil
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// service.OrderRepo

func (m *memStore) Create(ctx context.Context, o entities.Order, idempotencyKey string) error {
	// Mirrors orders_idempotency_key_idx: unique per (customer, key, shop).
	if idempotencyKey != "" {
		ref := o.CustomerID + "/" + idempotencyKey
		for _, id := range m.keys[ref] {
			if m.orders[id].ShopID == o.ShopID {
				return errors.New("duplicate idempotency key for shop")
			}
		}
		m.keys[ref] = append(m.keys[ref], o.ID)
	}
	m.orders[o.ID] = o
	return nil
}

func (m *memStore) GetByID(ctx context.Context, orderID string) (entities.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (m *memStore) GetByIdempotencyKey(ctx context.Context, customerID, key string) ([]entities.Order, error) {
	var out []entities.Order
	for _, id := range m.keys[customerID+"/"+key] {
		out = append(out, m.orders[id])
	}
	return out, nil
}

func (m *memStore) ListByCustomer(ctx context.Context, customerID string) ([]entities.Order, error) {
	var out []entities.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sortOrders(out)
	return out, nil
}

func (m *memStore) ListByShop(ctx context.Context, shopID string) ([]entities.Order, error) {
	var out []entities.Order
	for _, o := range m.orders {
		if o.ShopID == shopID {
			out = append(out, o)
		}
	}
	sortOrders(out)
	return out, nil
}

func (m *memStore) ListAll(ctx context.Context) ([]entities.Order, error) {
	var out []entities.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	sortOrders(out)
	return out, nil
}

func sortOrders(orders []entities.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
}

func (m *memStore) UpdateStatus(ctx context.Context, orderID string, from, to entities.OrderStatus, upd entities.StatusUpdate) error {
	o, ok := m.orders[orderID]
	if !ok {
		return entities.ErrOrderNotFound
	}
	if o.Status != from {
		return fmt.Errorf("%w: order is %s", entities.ErrInvalidTransition, o.Status)
	}
	o.Status = to
	if upd.QuoteAmount != nil {
		o.QuoteAmount = *upd.QuoteAmount
	}
	if upd.TotalAmount != nil {
		o.TotalAmount = *upd.TotalAmount
	}
	if upd.PaymentMethod != nil {
		o.PaymentMethod = *upd.PaymentMethod
	}
	m.orders[orderID] = o
	return nil
}

// service.OrderReader

func (m *memStore) MarkRated(ctx context.Context, orderID string) error {
	o, ok := m.orders[orderID]
	if !ok || o.Status != entities.OrderDelivered || o.IsRated {
		return fmt.Errorf("%w: order is not rateable", entities.ErrNotEligible)
	}
	o.IsRated = true
	m.orders[orderID] = o
	return nil
}

// shop and product stores

type shopStore struct{ m *memStore }

func (s shopStore) GetByID(ctx context.Context, shopID string) (entities.Shop, error) {
	shop, ok := s.m.shops[shopID]
	if !ok {
		return entities.Shop{}, entities.ErrShopNotFound
	}
	return shop, nil
}

type productStore struct{ m *memStore }

func (p productStore) GetByID(ctx context.Context, productID string) (entities.Product, error) {
	product, ok := p.m.products[productID]
	if !ok {
		return entities.Product{}, entities.ErrProductNotFound
	}
	return product, nil
}

func (p productStore) AdjustStock(ctx context.Context, productID string, delta int) (int, error) {
	product, ok := p.m.products[productID]
	if !ok {
		return 0, entities.ErrProductNotFound
	}
	if product.IsService || delta == 0 {
		return product.Stock, nil
	}
	if product.Stock+delta < 0 {
		return 0, fmt.Errorf("%w: %s has %d left", entities.ErrInsufficientStock, product.Name, product.Stock)
	}
	product.Stock += delta
	p.m.products[productID] = product
	return product.Stock, nil
}

func (s shopStore) Create(ctx context.Context, shop entities.Shop) error {
	s.m.shops[shop.ID] = shop
	return nil
}

func (s shopStore) Update(ctx context.Context, shop entities.Shop) error {
	existing, ok := s.m.shops[shop.ID]
	if !ok {
		return entities.ErrShopNotFound
	}
	shop.OwnerID = existing.OwnerID
	shop.Status = existing.Status
	s.m.shops[shop.ID] = shop
	return nil
}

func (s shopStore) GetByOwner(ctx context.Context, ownerID string) (entities.Shop, error) {
	for _, shop := range s.m.shops {
		if shop.OwnerID == ownerID {
			return shop, nil
		}
	}
	return entities.Shop{}, entities.ErrShopNotFound
}

func (s shopStore) List(ctx context.Context, filter repo.ShopFilter) ([]entities.Shop, error) {
	var out []entities.Shop
	for _, shop := range s.m.shops {
		if filter.Status != "" && shop.Status != filter.Status {
			continue
		}
		if filter.OwnerID != "" && shop.OwnerID != filter.OwnerID {
			continue
		}
		if filter.FeaturedOnly && !shop.IsFeatured {
			continue
		}
		out = append(out, shop)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s shopStore) SetStatus(ctx context.Context, shopID string, status entities.ShopStatus) error {
	shop, ok := s.m.shops[shopID]
	if !ok {
		return entities.ErrShopNotFound
	}
	shop.Status = status
	s.m.shops[shopID] = shop
	return nil
}

func (s shopStore) SetFeatured(ctx context.Context, shopID string, featured bool) error {
	shop, ok := s.m.shops[shopID]
	if !ok {
		return entities.ErrShopNotFound
	}
	shop.IsFeatured = featured
	s.m.shops[shopID] = shop
	return nil
}

func (p productStore) Create(ctx context.Context, product entities.Product) error {
	p.m.products[product.ID] = product
	return nil
}

func (p productStore) Update(ctx context.Context, product entities.Product) error {
	if _, ok := p.m.products[product.ID]; !ok {
		return entities.ErrProductNotFound
	}
	p.m.products[product.ID] = product
	return nil
}

func (p productStore) Delete(ctx context.Context, productID string) error {
	if _, ok := p.m.products[productID]; !ok {
		return entities.ErrProductNotFound
	}
	delete(p.m.products, productID)
	return nil
}

func (p productStore) ListByShop(ctx context.Context, shopID string) ([]entities.Product, error) {
	var out []entities.Product
	for _, product := range p.m.products {
		if product.ShopID == shopID {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCache struct{ data map[string][]byte }

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (c *fakeCache) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value []byte) { c.data[key] = value }
func (c *fakeCache) Delete(key string)            { delete(c.data, key) }

// notifier and publisher

func (m *memStore) Notify(ctx context.Context, userID, title, message string, kind entities.NotificationKind) error {
	m.notices = append(m.notices, notice{userID: userID, title: title, kind: kind})
	return nil
}

func (m *memStore) PublishOrderEvent(ctx context.Context, e service.OrderEvent) error {
	m.events = append(m.events, e)
	return nil
}

// service.ReviewRepo

func (m *memStore) CreateReview(ctx context.Context, rev entities.Review) error {
	m.reviews[rev.ID] = rev
	return nil
}

func (m *memStore) ListByShopReviews(ctx context.Context, shopID string) ([]entities.Review, error) {
	var out []entities.Review
	for _, r := range m.reviews {
		if r.ShopID == shopID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ShopRating(ctx context.Context, shopID string) (*float64, int, error) {
	sum, count := 0, 0
	for _, r := range m.reviews {
		if r.ShopID == shopID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return nil, 0, nil
	}
	avg := math.Round(float64(sum)/float64(count)*10) / 10
	return &avg, count, nil
}

// reviewRepo adapts memStore to service.ReviewRepo without colliding with
// the order repo method set.
type reviewRepo struct{ m *memStore }

func (r reviewRepo) Create(ctx context.Context, rev entities.Review) error {
	return r.m.CreateReview(ctx, rev)
}

func (r reviewRepo) ListByShop(ctx context.Context, shopID string) ([]entities.Review, error) {
	return r.m.ListByShopReviews(ctx, shopID)
}

func (r reviewRepo) ShopRating(ctx context.Context, shopID string) (*float64, int, error) {
	return r.m.ShopRating(ctx, shopID)
}

func newOrderService(m *memStore) *service.OrderService {
	return service.NewOrderService(discardLogger(), m, m, shopStore{m}, productStore{m}, m, m)
}
