package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"creme-store/models"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Close(context.Context) error {
	return s.db.Close()
}

const orderColumns = `id, order_code, user_id, user_email, items, total_amount, status,
	shipping_address, checkout_key, order_date, updated_at`

func (s *MySQLStore) CreateOrder(ctx context.Context, order *models.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	checkoutKey := sql.NullString{String: order.CheckoutKey, Valid: order.CheckoutKey != ""}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.OrderID, order.UserID, order.UserEmail, itemsJSON, order.TotalAmount,
		order.Status, addressJSON, checkoutKey, order.OrderDate, order.UpdatedAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (s *MySQLStore) GetOrderByCheckoutKey(ctx context.Context, key string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE checkout_key = ?`, key)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by checkout key: %w", err)
	}
	return order, nil
}

func (s *MySQLStore) ListOrdersByUserID(ctx context.Context, userID string) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	return collectOrders(rows)
}

func (s *MySQLStore) ListAllOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query all orders: %w", err)
	}
	return collectOrders(rows)
}

func (s *MySQLStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		// MySQL reports 0 for an unchanged row too; tell the two apart.
		if _, err := s.GetOrderByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order       models.Order
		itemsJSON   []byte
		addressJSON []byte
		checkoutKey sql.NullString
	)
	if err := row.Scan(
		&order.ID,
		&order.OrderID,
		&order.UserID,
		&order.UserEmail,
		&itemsJSON,
		&order.TotalAmount,
		&order.Status,
		&addressJSON,
		&checkoutKey,
		&order.OrderDate,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	order.CheckoutKey = checkoutKey.String
	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]*models.Order, error) {
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

const productColumns = `id, name, description, offer_price, original_price, category, category_slug,
	sub_category, brand, image_url, stock, is_featured, is_weekly_deal, availability, created_at`

func (s *MySQLStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return product, nil
}

func (s *MySQLStore) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.CategorySlug != "" {
		where = append(where, "category_slug = ?")
		args = append(args, filter.CategorySlug)
	}
	if filter.SubCategory != "" {
		where = append(where, "sub_category = ?")
		args = append(args, filter.SubCategory)
	}
	if filter.Featured {
		where = append(where, "is_featured = TRUE")
	}
	if filter.WeeklyDeal {
		where = append(where, "is_weekly_deal = TRUE")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (s *MySQLStore) CreateProduct(ctx context.Context, p *models.Product) error {
	original := sql.NullFloat64{}
	if p.OriginalPrice != nil {
		original = sql.NullFloat64{Float64: *p.OriginalPrice, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.OfferPrice, original, p.Category, p.CategorySlug,
		p.SubCategory, p.Brand, p.ImageURL, p.Stock, p.IsFeatured, p.IsWeeklyDeal, p.Availability, p.CreatedAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *MySQLStore) ReserveStock(ctx context.Context, lines []models.StockLine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, line := range lines {
		result, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			line.Quantity, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("reserve stock for %s: %w", line.ProductID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("reserve stock for %s: %w", line.ProductID, err)
		}
		if affected == 0 {
			return fmt.Errorf("%w for product %s", ErrInsufficientStock, line.ProductID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stock reservation: %w", err)
	}
	return nil
}

func (s *MySQLStore) ReleaseStock(ctx context.Context, lines []models.StockLine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, line := range lines {
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock + ? WHERE id = ?`, line.Quantity, line.ProductID); err != nil {
			return fmt.Errorf("release stock for %s: %w", line.ProductID, err)
		}
	}
	return tx.Commit()
}

func (s *MySQLStore) RecordInvoice(ctx context.Context, inv *models.Invoice) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (id, order_id, email, subject, sent_at) VALUES (?, ?, ?, ?, ?)`,
		inv.ID, inv.OrderID, inv.Email, inv.Subject, inv.SentAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p        models.Product
		original sql.NullFloat64
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.OfferPrice,
		&original,
		&p.Category,
		&p.CategorySlug,
		&p.SubCategory,
		&p.Brand,
		&p.ImageURL,
		&p.Stock,
		&p.IsFeatured,
		&p.IsWeeklyDeal,
		&p.Availability,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if original.Valid {
		v := original.Float64
		p.OriginalPrice = &v
	}
	return &p, nil
}
