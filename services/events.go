package services

import (
	"context"
	"log"
	"time"

	"creme-store/models"
)

// EventPublisher is satisfied by *rabbitmq.RabbitMQ.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent, priority uint8) error
}

const (
	defaultPriority    uint8 = 5
	cancelledPriority  uint8 = 8
	largeOrderPriority uint8 = 9

	largeOrderTotal = 10000
)

func eventPriority(event models.OrderEvent) uint8 {
	switch {
	case event.Type == models.EventOrderStatusUpdated && event.Status == models.StatusCancelled:
		return cancelledPriority
	case event.Type == models.EventOrderCreated && event.Total > largeOrderTotal:
		return largeOrderPriority
	default:
		return defaultPriority
	}
}

func newOrderEvent(order *models.Order, eventType models.EventType) models.OrderEvent {
	return models.OrderEvent{
		OrderID:   order.ID,
		OrderCode: order.OrderID,
		UserID:    order.UserID,
		UserEmail: order.UserEmail,
		Type:      eventType,
		Status:    order.Status,
		Total:     order.TotalAmount,
		Occurred:  time.Now().UTC(),
	}
}

// publish never fails the caller: the write it describes has already happened.
func publish(ctx context.Context, publisher EventPublisher, event models.OrderEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishOrderEvent(ctx, event, eventPriority(event)); err != nil {
		log.Printf("Failed to publish order %s event for %s: %v", event.Type, event.OrderID, err)
	}
}
