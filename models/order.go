package models

import (
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// nominalTransitions is the lifecycle the storefront expects. Admin updates may still
// move an order anywhere; this table only decides what gets flagged in the logs.
var nominalTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func IsNominalTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range nominalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ShippingAddress struct {
	FirstName    string `json:"firstName" bson:"firstName"`
	LastName     string `json:"lastName" bson:"lastName"`
	AddressLine1 string `json:"addressLine1" bson:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty" bson:"addressLine2,omitempty"`
	City         string `json:"city" bson:"city"`
	PostalCode   string `json:"postalCode" bson:"postalCode"`
	Phone        string `json:"phone" bson:"phone"`
}

// OrderItem is the line snapshot taken at checkout. PriceAtPurchase is never refreshed
// from the catalog.
type OrderItem struct {
	ProductID       string  `json:"productId" bson:"productId" validate:"required"`
	Name            string  `json:"name" bson:"name" validate:"required"`
	Quantity        int     `json:"quantity" bson:"quantity" validate:"gte=1"`
	PriceAtPurchase float64 `json:"priceAtPurchase" bson:"priceAtPurchase" validate:"gte=0"`
	Image           string  `json:"image,omitempty" bson:"image,omitempty"`
}

type Order struct {
	ID              string          `json:"id" bson:"_id"`
	OrderID         string          `json:"orderId" bson:"orderId"`
	UserID          string          `json:"userId" bson:"userId"`
	UserEmail       string          `json:"userEmail,omitempty" bson:"userEmail,omitempty"`
	Items           []OrderItem     `json:"items" bson:"items"`
	TotalAmount     float64         `json:"totalAmount" bson:"totalAmount"`
	Status          OrderStatus     `json:"status" bson:"status"`
	OrderDate       time.Time       `json:"orderDate" bson:"orderDate"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	CheckoutKey     string          `json:"-" bson:"checkoutKey,omitempty"`
}

type EventType string

const (
	EventOrderCreated       EventType = "created"
	EventOrderStatusUpdated EventType = "status_updated"
)

type OrderEvent struct {
	OrderID   string      `json:"order_id"`
	OrderCode string      `json:"order_code"`
	UserID    string      `json:"user_id"`
	UserEmail string      `json:"user_email,omitempty"`
	Type      EventType   `json:"type"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total"`
	Occurred  time.Time   `json:"occurred"`
}

// Invoice records that an invoice email went out for an order.
type Invoice struct {
	ID      string    `json:"id" bson:"_id"`
	OrderID string    `json:"orderId" bson:"orderId"`
	Email   string    `json:"email" bson:"email"`
	Subject string    `json:"subject" bson:"subject"`
	SentAt  time.Time `json:"sentAt" bson:"sentAt"`
}
