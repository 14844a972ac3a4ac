package repository

import (
	"context"
	"testing"
	"time"

	"creme-store/apperrors"
	"creme-store/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(userID string, orderDate time.Time) *models.Order {
	return &models.Order{
		ID:        uuid.NewString(),
		OrderID:   "CR123456789",
		UserID:    userID,
		UserEmail: "buyer@example.com",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Silk Scarf", Quantity: 2, PriceAtPurchase: 500, Image: "scarf.jpg"},
		},
		TotalAmount: 1500,
		Status:      models.StatusPending,
		OrderDate:   orderDate.UTC().Truncate(time.Millisecond),
		UpdatedAt:   orderDate.UTC().Truncate(time.Millisecond),
		ShippingAddress: models.ShippingAddress{
			FirstName: "Ayesha", LastName: "Khan", AddressLine1: "12 Canal Road",
			City: "Lahore", PostalCode: "54000", Phone: "03001234567",
		},
	}
}

func newTestProduct(stock int) *models.Product {
	original := 4200.0
	return &models.Product{
		ID:            uuid.NewString(),
		Name:          "Embroidered Kurta",
		Description:   "Hand embroidered lawn kurta",
		OfferPrice:    3500,
		OriginalPrice: &original,
		Category:      "Women Clothing",
		CategorySlug:  "women-clothing",
		SubCategory:   "kurtas",
		Brand:         "Creme",
		Stock:         stock,
		IsFeatured:    true,
		Availability:  "in_stock",
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

// runStoreSuite exercises the behaviour every backend has to share.
func runStoreSuite(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("CreateOrder round trip", func(t *testing.T) {
		order := newTestOrder("user-"+uuid.NewString(), time.Now())
		require.NoError(t, store.CreateOrder(ctx, order))

		fetched, err := store.GetOrderByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.Items, fetched.Items)
		assert.Equal(t, 1500.0, fetched.TotalAmount)
		assert.Equal(t, order.ShippingAddress, fetched.ShippingAddress)
		assert.Equal(t, models.StatusPending, fetched.Status)
		assert.WithinDuration(t, order.OrderDate, fetched.OrderDate, time.Millisecond)
	})

	t.Run("GetOrderByID not found", func(t *testing.T) {
		_, err := store.GetOrderByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("duplicate checkout key", func(t *testing.T) {
		key := uuid.NewString()
		first := newTestOrder("user-dup", time.Now())
		first.CheckoutKey = key
		require.NoError(t, store.CreateOrder(ctx, first))

		second := newTestOrder("user-dup", time.Now())
		second.CheckoutKey = key
		assert.ErrorIs(t, store.CreateOrder(ctx, second), ErrDuplicateCheckout)

		found, err := store.GetOrderByCheckoutKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("orders without checkout key do not collide", func(t *testing.T) {
		require.NoError(t, store.CreateOrder(ctx, newTestOrder("user-nokey", time.Now())))
		require.NoError(t, store.CreateOrder(ctx, newTestOrder("user-nokey", time.Now())))
	})

	t.Run("ListOrdersByUserID newest first", func(t *testing.T) {
		userID := "user-" + uuid.NewString()
		older := newTestOrder(userID, time.Now().Add(-time.Hour))
		newer := newTestOrder(userID, time.Now())
		require.NoError(t, store.CreateOrder(ctx, older))
		require.NoError(t, store.CreateOrder(ctx, newer))
		require.NoError(t, store.CreateOrder(ctx, newTestOrder("someone-else", time.Now())))

		orders, err := store.ListOrdersByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, newer.ID, orders[0].ID)
		assert.Equal(t, older.ID, orders[1].ID)
	})

	t.Run("ListAllOrders newest first with limit", func(t *testing.T) {
		latest := newTestOrder("user-admin-list", time.Now().Add(time.Hour))
		require.NoError(t, store.CreateOrder(ctx, latest))

		all, err := store.ListAllOrders(ctx, 0)
		require.NoError(t, err)
		require.NotEmpty(t, all)
		assert.Equal(t, latest.ID, all[0].ID)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].OrderDate.After(all[i-1].OrderDate))
		}

		limited, err := store.ListAllOrders(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("UpdateOrderStatus", func(t *testing.T) {
		order := newTestOrder("user-status", time.Now())
		require.NoError(t, store.CreateOrder(ctx, order))

		require.NoError(t, store.UpdateOrderStatus(ctx, order.ID, models.StatusShipped))
		require.NoError(t, store.UpdateOrderStatus(ctx, order.ID, models.StatusShipped))

		fetched, err := store.GetOrderByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusShipped, fetched.Status)
		assert.Equal(t, 1500.0, fetched.TotalAmount)

		assert.ErrorIs(t, store.UpdateOrderStatus(ctx, uuid.NewString(), models.StatusShipped), ErrOrderNotFound)
	})

	t.Run("products by category", func(t *testing.T) {
		p := newTestProduct(5)
		p.CategorySlug = "cat-" + uuid.NewString()
		require.NoError(t, store.CreateProduct(ctx, p))
		assert.ErrorIs(t, store.CreateProduct(ctx, p), ErrDuplicateProduct)

		fetched, err := store.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Name, fetched.Name)
		require.NotNil(t, fetched.OriginalPrice)
		assert.Equal(t, 4200.0, *fetched.OriginalPrice)

		list, err := store.ListProducts(ctx, models.ProductFilter{CategorySlug: p.CategorySlug, Featured: true})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, p.ID, list[0].ID)

		list, err = store.ListProducts(ctx, models.ProductFilter{CategorySlug: p.CategorySlug, WeeklyDeal: true})
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = store.GetProduct(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("ReserveStock is all or nothing", func(t *testing.T) {
		plenty := newTestProduct(10)
		scarce := newTestProduct(1)
		require.NoError(t, store.CreateProduct(ctx, plenty))
		require.NoError(t, store.CreateProduct(ctx, scarce))

		err := store.ReserveStock(ctx, []models.StockLine{
			{ProductID: plenty.ID, Quantity: 3},
			{ProductID: scarce.ID, Quantity: 2},
		})
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.ErrorIs(t, err, apperrors.ErrFailedPrecondition)

		p, err := store.GetProduct(ctx, plenty.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, p.Stock)

		lines := []models.StockLine{{ProductID: plenty.ID, Quantity: 3}, {ProductID: scarce.ID, Quantity: 1}}
		require.NoError(t, store.ReserveStock(ctx, lines))
		p, _ = store.GetProduct(ctx, plenty.ID)
		assert.Equal(t, 7, p.Stock)

		require.NoError(t, store.ReleaseStock(ctx, lines))
		p, _ = store.GetProduct(ctx, scarce.ID)
		assert.Equal(t, 1, p.Stock)
	})

	t.Run("RecordInvoice", func(t *testing.T) {
		require.NoError(t, store.RecordInvoice(ctx, &models.Invoice{
			ID: uuid.NewString(), OrderID: uuid.NewString(), Email: "buyer@example.com",
			Subject: "Your invoice", SentAt: time.Now().UTC(),
		}))
	})
}
