package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strings"

	"creme-store/apperrors"
	"creme-store/cart"
	"creme-store/models"
	"creme-store/pricing"
	"creme-store/validators"
)

// Customer is the authenticated buyer placing the order.
type Customer struct {
	UserID string
	Email  string
}

type CheckoutResult struct {
	Order    *models.Order `json:"order"`
	Quote    pricing.Quote `json:"quote"`
	Replayed bool          `json:"replayed"`
}

type CheckoutService struct {
	carts  cart.Store
	orders *OrderService
}

func NewCheckoutService(carts cart.Store, orders *OrderService) *CheckoutService {
	return &CheckoutService{
		carts:  carts,
		orders: orders,
	}
}

// Checkout turns the session cart into an order. The cart is cleared only once the order
// is stored. A retry with the same key returns the stored order, also after the cart was
// cleared; reusing the key for a different cart or address is a conflict.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, customer Customer, form validators.ShippingForm, idempotencyKey string) (*CheckoutResult, error) {
	if customer.UserID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	session, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	address := validators.ValidateShippingAddress(form)

	if idempotencyKey != "" && address.OK() {
		var current []models.OrderItem
		if !session.IsEmpty() {
			current = session.Snapshot()
		}
		existing, err := s.orders.replay(ctx, customer.UserID, idempotencyKey, current, address.Value)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if current != nil {
				s.clearCart(ctx, sessionID, existing)
			}
			return &CheckoutResult{Order: existing, Quote: s.orders.Policy().Quote(existing.Items), Replayed: true}, nil
		}
	}

	if session.IsEmpty() {
		return nil, apperrors.NewValidationError(map[string]string{"cart": "Your cart is empty."})
	}
	if !address.OK() {
		return nil, address.Err()
	}

	items := session.Snapshot()
	quote := s.orders.Policy().Quote(items)

	key := idempotencyKey
	if key == "" {
		key = DeriveCheckoutKey(session.AttemptID, items)
	}

	result, err := s.orders.insert(ctx, CreateOrderInput{
		UserID:          customer.UserID,
		UserEmail:       customer.Email,
		Items:           items,
		TotalAmount:     quote.Total,
		ShippingAddress: address.Value,
		CheckoutKey:     key,
	})
	if err != nil {
		return nil, err
	}

	s.clearCart(ctx, sessionID, result.Order)

	if !result.Replayed {
		publish(ctx, s.orders.publisher, newOrderEvent(result.Order, models.EventOrderCreated))
	}

	return &CheckoutResult{Order: result.Order, Quote: quote, Replayed: result.Replayed}, nil
}

func (s *CheckoutService) clearCart(ctx context.Context, sessionID string, order *models.Order) {
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		log.Printf("Failed to clear cart %s after order %s: %v", sessionID, order.ID, err)
	}
}

// DeriveCheckoutKey fingerprints one version of a cart. Resubmitting an unchanged cart
// maps to the same order; the attempt id changes whenever the cart does.
func DeriveCheckoutKey(attemptID string, items []models.OrderItem) string {
	return hashParts(attemptID, itemsFingerprint(items))
}

// scopedCheckoutKey is the key as stored, so equal client keys of two users never meet.
func scopedCheckoutKey(userID, key string) string {
	return hashParts(userID, key)
}

func itemsFingerprint(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s:%d:%.2f", item.ProductID, item.Quantity, item.PriceAtPurchase))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func hashParts(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func stockLines(items []models.OrderItem) []models.StockLine {
	lines := make([]models.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}
