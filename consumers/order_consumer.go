package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"creme-store/apperrors"
	"creme-store/config"
	"creme-store/flows"
	"creme-store/mailer"
	"creme-store/models"
	"creme-store/repository"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type InvoiceDrafter interface {
	InvoiceEmail(ctx context.Context, in flows.InvoiceEmailInput) (flows.InvoiceEmailOutput, error)
}

type EmailSender interface {
	SendBrandedEmail(ctx context.Context, email mailer.Email) error
}

type OrderConsumer struct {
	orders   repository.OrderRepository
	invoices repository.InvoiceRepository
	drafter  InvoiceDrafter
	mail     EmailSender
	timeout  time.Duration
}

func NewOrderConsumer(orders repository.OrderRepository, invoices repository.InvoiceRepository, drafter InvoiceDrafter, mail EmailSender) *OrderConsumer {
	return &OrderConsumer{
		orders:   orders,
		invoices: invoices,
		drafter:  drafter,
		mail:     mail,
		timeout:  time.Minute,
	}
}

// errDeadLetter marks messages that should go to the dead letter queue instead of
// being acknowledged.
var errDeadLetter = errors.New("dead letter")

func (c *OrderConsumer) Start(ch *amqp.Channel, cfg *config.Config) error {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"creme-store", // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register order consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			c.processOrderMessage(msg)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"creme-store-dlq",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
		return nil
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
	return nil
}

func (c *OrderConsumer) processOrderMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
			_ = msg.Nack(false, false)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.HandleMessage(ctx, msg.Body); err != nil {
		log.Printf("Rejecting order message %s: %v", msg.MessageId, err)
		if err := msg.Nack(false, false); err != nil {
			log.Printf("Failed to nack message: %v", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack message: %v", err)
	}
}

// HandleMessage returns an error only for messages that belong in the dead letter queue.
func (c *OrderConsumer) HandleMessage(ctx context.Context, body []byte) error {
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: invalid message format: %v", errDeadLetter, err)
	}
	if event.OrderID == "" {
		return fmt.Errorf("%w: message has no order id", errDeadLetter)
	}

	log.Printf("Processing order event: ID=%s, Type=%s", event.OrderID, event.Type)

	switch event.Type {
	case models.EventOrderCreated:
		return c.handleOrderCreated(ctx, event)
	case models.EventOrderStatusUpdated:
		log.Printf("Order %s (%s) is now %s", event.OrderID, event.OrderCode, event.Status)
		return nil
	default:
		log.Printf("Unknown event type: %s", event.Type)
		return nil
	}
}

func (c *OrderConsumer) handleOrderCreated(ctx context.Context, event models.OrderEvent) error {
	order, err := c.orders.GetOrderByID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("%w: load order %s: %v", errDeadLetter, event.OrderID, err)
	}
	if order.UserEmail == "" {
		log.Printf("Order %s has no email address, skipping invoice", order.ID)
		return nil
	}

	draft, err := c.drafter.InvoiceEmail(ctx, flows.InvoiceEmailInput{Order: order})
	if err != nil {
		return c.invoiceFailure(order, "draft", err)
	}

	email := mailer.Email{To: order.UserEmail, Subject: draft.Subject, HTML: draft.HTML}
	if err := c.mail.SendBrandedEmail(ctx, email); err != nil {
		return c.invoiceFailure(order, "send", err)
	}

	invoice := &models.Invoice{
		ID:      uuid.NewString(),
		OrderID: order.ID,
		Email:   order.UserEmail,
		Subject: draft.Subject,
		SentAt:  time.Now().UTC(),
	}
	if err := c.invoices.RecordInvoice(ctx, invoice); err != nil {
		log.Printf("Invoice for order %s was sent but not recorded: %v", order.ID, err)
	}
	return nil
}

// invoiceFailure acknowledges failures that retrying cannot fix and dead-letters the rest.
func (c *OrderConsumer) invoiceFailure(order *models.Order, step string, err error) error {
	if errors.Is(err, apperrors.ErrFailedPrecondition) {
		log.Printf("Skipping invoice %s for order %s: %v", step, order.ID, err)
		return nil
	}
	return fmt.Errorf("%w: invoice %s for order %s: %v", errDeadLetter, step, order.ID, err)
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack dead letter: %v", err)
	}
}
