package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"creme-store/apperrors"
	"creme-store/models"
	"creme-store/pricing"
	"creme-store/repository"
	"creme-store/utils"
	"creme-store/validators"

	"github.com/google/uuid"
)

// ErrCheckoutKeyReused is returned when a checkout key already belongs to a different order
// request.
var ErrCheckoutKeyReused = fmt.Errorf("%w: idempotency key was already used for a different order", apperrors.ErrConflict)

type CreateOrderInput struct {
	UserID          string                 `json:"userId" validate:"required"`
	UserEmail       string                 `json:"userEmail" validate:"omitempty,email"`
	Items           []models.OrderItem     `json:"items" validate:"min=1,dive"`
	TotalAmount     float64                `json:"totalAmount" validate:"gte=0"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	CheckoutKey     string                 `json:"-"`
}

// CreateOrderResult reports Replayed when the checkout key already had an order and no
// new one was written.
type CreateOrderResult struct {
	Order    *models.Order
	Replayed bool
}

type OrderService struct {
	repo      repository.OrderRepository
	stock     repository.ProductRepository
	policy    pricing.ShippingPolicy
	publisher EventPublisher
	now       func() time.Time
}

// NewOrderService builds the order service. A nil stock repository disables stock
// reservation.
func NewOrderService(repo repository.OrderRepository, stock repository.ProductRepository, policy pricing.ShippingPolicy, publisher EventPublisher) *OrderService {
	return &OrderService{
		repo:      repo,
		stock:     stock,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *OrderService) Policy() pricing.ShippingPolicy {
	return s.policy
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	result, err := s.insert(ctx, in)
	if err != nil {
		return nil, err
	}
	if !result.Replayed {
		publish(ctx, s.publisher, newOrderEvent(result.Order, models.EventOrderCreated))
	}
	return result, nil
}

// insert validates the input, reserves stock and writes the order. Stock is released
// again when the write fails or an earlier order under the same key is returned.
func (s *OrderService) insert(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	address, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	if in.CheckoutKey != "" {
		existing, err := s.replay(ctx, in.UserID, in.CheckoutKey, in.Items, address)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &CreateOrderResult{Order: existing, Replayed: true}, nil
		}
	}

	lines := stockLines(in.Items)
	if s.stock != nil {
		if err := s.stock.ReserveStock(ctx, lines); err != nil {
			return nil, err
		}
	}

	result, err := s.write(ctx, in, address)
	if s.stock != nil && (err != nil || result.Replayed) {
		if releaseErr := s.stock.ReleaseStock(ctx, lines); releaseErr != nil {
			log.Printf("Failed to release stock for user %s: %v", in.UserID, releaseErr)
		}
	}
	return result, err
}

func (s *OrderService) validate(in CreateOrderInput) (models.ShippingAddress, error) {
	violations := validators.Struct(in)
	if violations == nil {
		violations = map[string]string{}
	}
	address := validators.ValidateShippingAddress(validators.FormFromAddress(in.ShippingAddress))
	for field, msg := range address.Violations {
		violations["shippingAddress."+field] = msg
	}
	if len(violations) == 0 {
		if quote := s.policy.Quote(in.Items); !quote.Matches(in.TotalAmount) {
			violations["totalAmount"] = fmt.Sprintf("does not match items and shipping (expected %.2f)", quote.Total)
		}
	}
	if len(violations) > 0 {
		return models.ShippingAddress{}, apperrors.NewValidationError(violations)
	}
	return address.Value, nil
}

func (s *OrderService) write(ctx context.Context, in CreateOrderInput, address models.ShippingAddress) (*CreateOrderResult, error) {
	now := s.now().UTC()
	order := &models.Order{
		ID:              uuid.NewString(),
		OrderID:         utils.OrderCode(now),
		UserID:          in.UserID,
		UserEmail:       in.UserEmail,
		Items:           in.Items,
		TotalAmount:     in.TotalAmount,
		Status:          models.StatusPending,
		OrderDate:       now,
		UpdatedAt:       now,
		ShippingAddress: address,
	}
	if in.CheckoutKey != "" {
		order.CheckoutKey = scopedCheckoutKey(in.UserID, in.CheckoutKey)
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateCheckout) && in.CheckoutKey != "" {
			// Lost a race with a concurrent attempt using the same key.
			existing, replayErr := s.replay(ctx, in.UserID, in.CheckoutKey, in.Items, address)
			if replayErr != nil {
				return nil, replayErr
			}
			if existing == nil {
				return nil, err
			}
			return &CreateOrderResult{Order: existing, Replayed: true}, nil
		}
		return nil, err
	}

	log.Printf("Created order %s (%s) for user %s", order.ID, order.OrderID, order.UserID)
	return &CreateOrderResult{Order: order}, nil
}

// replay returns the caller's order already stored under key, or nil when there is none.
// A stored order placed with other items or another address is a conflict. Nil items
// skip the item comparison.
func (s *OrderService) replay(ctx context.Context, userID, key string, items []models.OrderItem, address models.ShippingAddress) (*models.Order, error) {
	existing, err := s.repo.GetOrderByCheckoutKey(ctx, scopedCheckoutKey(userID, key))
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if existing.UserID != userID {
		return nil, ErrCheckoutKeyReused
	}
	if items != nil && itemsFingerprint(items) != itemsFingerprint(existing.Items) {
		return nil, ErrCheckoutKeyReused
	}
	if address != existing.ShippingAddress {
		return nil, ErrCheckoutKeyReused
	}
	return existing, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.repo.ListOrdersByUserID(ctx, userID)
}

// GetOrderDetails hides orders that belong to someone else behind not-found. An empty
// userID skips the ownership check.
func (s *OrderService) GetOrderDetails(ctx context.Context, orderID, userID string) (*models.Order, error) {
	if orderID == "" {
		return nil, apperrors.NewValidationError(map[string]string{"id": "is required"})
	}
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != "" && order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) GetAllOrdersForAdmin(ctx context.Context, limit int) ([]*models.Order, error) {
	if limit < 0 {
		return nil, apperrors.NewValidationError(map[string]string{"limit": "must be at least 0"})
	}
	return s.repo.ListAllOrders(ctx, limit)
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(map[string]string{
			"status": "must be one of: Pending Processing Shipped Delivered Cancelled",
		})
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.IsNominalTransition(order.Status, status) {
		log.Printf("Warning: order %s moved %s -> %s outside the usual lifecycle", orderID, order.Status, status)
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = s.now().UTC()

	publish(ctx, s.publisher, newOrderEvent(order, models.EventOrderStatusUpdated))
	return order, nil
}
