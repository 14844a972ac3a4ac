package cache

import (
	"context"
	"errors"

	"creme-store/models"
)

// ProductCache fronts catalog reads. Lists are invalidated as a whole whenever the
// catalog changes; single products expire on their own.
type ProductCache interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product) error
	GetProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	SetProducts(ctx context.Context, filter models.ProductFilter, products []*models.Product) error
	InvalidateLists(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
