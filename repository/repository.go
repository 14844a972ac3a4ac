package repository

import (
	"context"
	"fmt"

	"creme-store/apperrors"
	"creme-store/models"
)

var (
	ErrOrderNotFound     = fmt.Errorf("order %w", apperrors.ErrNotFound)
	ErrProductNotFound   = fmt.Errorf("product %w", apperrors.ErrNotFound)
	ErrDuplicateCheckout = fmt.Errorf("%w: order for this checkout already exists", apperrors.ErrConflict)
	ErrDuplicateProduct  = fmt.Errorf("%w: product already exists", apperrors.ErrConflict)
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", apperrors.ErrFailedPrecondition)
)

// OrderRepository persists orders. Orders are never deleted; status is the only field
// that changes after creation.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByCheckoutKey(ctx context.Context, key string) (*models.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*models.Order, error)
	// ListAllOrders returns every order newest first; limit <= 0 means no limit.
	ListAllOrders(ctx context.Context, limit int) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	// ReserveStock decrements every line or none of them.
	ReserveStock(ctx context.Context, lines []models.StockLine) error
	ReleaseStock(ctx context.Context, lines []models.StockLine) error
}

type InvoiceRepository interface {
	RecordInvoice(ctx context.Context, invoice *models.Invoice) error
}

// Store is everything a backend provides.
type Store interface {
	OrderRepository
	ProductRepository
	InvoiceRepository
	Close(ctx context.Context) error
}
