package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"creme-store/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ordersCollection   = "orders"
	productsCollection = "products"
	invoicesCollection = "invoices"
)

// MongoStore keeps orders, products and invoices as top-level document collections.
type MongoStore struct {
	db       *mongo.Database
	orders   *mongo.Collection
	products *mongo.Collection
	invoices *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:       db,
		orders:   db.Collection(ordersCollection),
		products: db.Collection(productsCollection),
		invoices: db.Collection(invoicesCollection),
	}
}

func (s *MongoStore) CreateIndexes(ctx context.Context) error {
	_, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "checkoutKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "orderDate", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "orderDate", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}

	_, err = s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "categorySlug", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *MongoStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MongoStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.findOrder(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetOrderByCheckoutKey(ctx context.Context, key string) (*models.Order, error) {
	return s.findOrder(ctx, bson.M{"checkoutKey": key})
}

func (s *MongoStore) findOrder(ctx context.Context, filter bson.M) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, filter).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

func (s *MongoStore) ListOrdersByUserID(ctx context.Context, userID string) ([]*models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})
	return s.findOrders(ctx, bson.M{"userId": userID}, opts)
}

func (s *MongoStore) ListAllOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findOrders(ctx, bson.M{}, opts)
}

func (s *MongoStore) findOrders(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Order, error) {
	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []*models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *MongoStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	result, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *MongoStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

func (s *MongoStore) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	query := bson.M{}
	if filter.CategorySlug != "" {
		query["categorySlug"] = filter.CategorySlug
	}
	if filter.SubCategory != "" {
		query["subCategory"] = filter.SubCategory
	}
	if filter.Featured {
		query["isFeatured"] = true
	}
	if filter.WeeklyDeal {
		query["isWeeklyDeal"] = true
	}

	cursor, err := s.products.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (s *MongoStore) CreateProduct(ctx context.Context, product *models.Product) error {
	if _, err := s.products.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// ReserveStock applies conditional decrements one product at a time and undoes the
// ones already applied when a later line cannot be served.
func (s *MongoStore) ReserveStock(ctx context.Context, lines []models.StockLine) error {
	for i, line := range lines {
		result, err := s.products.UpdateOne(ctx,
			bson.M{"_id": line.ProductID, "stock": bson.M{"$gte": line.Quantity}},
			bson.M{"$inc": bson.M{"stock": -line.Quantity}},
		)
		if err == nil && result.MatchedCount == 1 {
			continue
		}

		if relErr := s.ReleaseStock(ctx, lines[:i]); relErr != nil {
			log.Printf("release partial stock reservation failed: %v", relErr)
		}
		if err != nil {
			return fmt.Errorf("reserve stock for %s: %w", line.ProductID, err)
		}
		return fmt.Errorf("%w for product %s", ErrInsufficientStock, line.ProductID)
	}
	return nil
}

func (s *MongoStore) ReleaseStock(ctx context.Context, lines []models.StockLine) error {
	for _, line := range lines {
		if _, err := s.products.UpdateOne(ctx,
			bson.M{"_id": line.ProductID},
			bson.M{"$inc": bson.M{"stock": line.Quantity}},
		); err != nil {
			return fmt.Errorf("release stock for %s: %w", line.ProductID, err)
		}
	}
	return nil
}

func (s *MongoStore) RecordInvoice(ctx context.Context, invoice *models.Invoice) error {
	if _, err := s.invoices.InsertOne(ctx, invoice); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}
