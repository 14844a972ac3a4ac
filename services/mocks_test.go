package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"creme-store/cache"
	"creme-store/models"
	"creme-store/repository"
)

type memStore struct {
	m         sync.Mutex
	orders    map[string]*models.Order
	products  map[string]*models.Product
	invoices  []*models.Invoice
	createErr error
	getCalls  int
	released  [][]models.StockLine
}

func newMemStore() *memStore {
	return &memStore{
		orders:   map[string]*models.Order{},
		products: map[string]*models.Product{},
	}
}

func (s *memStore) Close(context.Context) error { return nil }

func (s *memStore) CreateOrder(_ context.Context, order *models.Order) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if order.CheckoutKey != "" {
		for _, o := range s.orders {
			if o.CheckoutKey == order.CheckoutKey {
				return repository.ErrDuplicateCheckout
			}
		}
	}
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *memStore) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	s.m.Lock()
	defer s.m.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *memStore) GetOrderByCheckoutKey(_ context.Context, key string) (*models.Order, error) {
	s.m.Lock()
	defer s.m.Unlock()
	for _, o := range s.orders {
		if o.CheckoutKey == key {
			copied := *o
			return &copied, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (s *memStore) ListOrdersByUserID(_ context.Context, userID string) ([]*models.Order, error) {
	s.m.Lock()
	defer s.m.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *memStore) ListAllOrders(_ context.Context, limit int) ([]*models.Order, error) {
	s.m.Lock()
	defer s.m.Unlock()
	out := make([]*models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) UpdateOrderStatus(_ context.Context, id string, status models.OrderStatus) error {
	s.m.Lock()
	defer s.m.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (s *memStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.getCalls++
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) ListProducts(_ context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.getCalls++
	var out []*models.Product
	for _, p := range s.products {
		if filter.CategorySlug != "" && p.CategorySlug != filter.CategorySlug {
			continue
		}
		if filter.Featured && !p.IsFeatured {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.m.Lock()
	defer s.m.Unlock()
	if _, ok := s.products[product.ID]; ok {
		return repository.ErrDuplicateProduct
	}
	s.products[product.ID] = product
	return nil
}

func (s *memStore) ReserveStock(_ context.Context, lines []models.StockLine) error {
	s.m.Lock()
	defer s.m.Unlock()
	for _, line := range lines {
		p, ok := s.products[line.ProductID]
		if !ok {
			return repository.ErrProductNotFound
		}
		if p.Stock < line.Quantity {
			return fmt.Errorf("%w: %s", repository.ErrInsufficientStock, line.ProductID)
		}
	}
	for _, line := range lines {
		s.products[line.ProductID].Stock -= line.Quantity
	}
	return nil
}

func (s *memStore) ReleaseStock(_ context.Context, lines []models.StockLine) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.released = append(s.released, lines)
	for _, line := range lines {
		if p, ok := s.products[line.ProductID]; ok {
			p.Stock += line.Quantity
		}
	}
	return nil
}

func (s *memStore) RecordInvoice(_ context.Context, invoice *models.Invoice) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.invoices = append(s.invoices, invoice)
	return nil
}

func (s *memStore) stock(id string) int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.products[id].Stock
}

func sortNewestFirst(orders []*models.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
}

type mockCache struct {
	m           sync.Mutex
	products    map[string]*models.Product
	lists       map[models.ProductFilter][]*models.Product
	getErr      error
	invalidated int
}

func newMockCache() *mockCache {
	return &mockCache{
		products: map[string]*models.Product{},
		lists:    map[models.ProductFilter][]*models.Product{},
	}
}

func (c *mockCache) GetProduct(_ context.Context, id string) (*models.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.products[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (c *mockCache) SetProduct(_ context.Context, product *models.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.products[product.ID] = product
	return nil
}

func (c *mockCache) GetProducts(_ context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	list, ok := c.lists[filter]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return list, nil
}

func (c *mockCache) SetProducts(_ context.Context, filter models.ProductFilter, products []*models.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.lists[filter] = products
	return nil
}

func (c *mockCache) InvalidateLists(context.Context) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.invalidated++
	c.lists = map[models.ProductFilter][]*models.Product{}
	return nil
}

type publishedEvent struct {
	event    models.OrderEvent
	priority uint8
}

type mockPublisher struct {
	m      sync.Mutex
	events []publishedEvent
	err    error
}

func (p *mockPublisher) PublishOrderEvent(_ context.Context, event models.OrderEvent, priority uint8) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{event: event, priority: priority})
	return nil
}

func (p *mockPublisher) published() []publishedEvent {
	p.m.Lock()
	defer p.m.Unlock()
	return append([]publishedEvent(nil), p.events...)
}
