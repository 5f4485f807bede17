package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/mailer"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order and movement events and sends the
// corresponding emails.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	mailer       *mailer.Mailer
	warehouseTo  string
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker. warehouseTo is
// the inbox receiving movement approval notices.
func NewNotificationWorker(consumer *broker.Consumer, m *mailer.Mailer, warehouseTo string) *NotificationWorker {
	w := &NotificationWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		mailer:       m,
		warehouseTo:  warehouseTo,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnOrderCreated(w.handleOrderCreated)
	w.eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler.OnMovementApproved(w.handleMovementApproved)
	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if event.Email == "" {
		return nil
	}
	if err := w.mailer.SendOrderConfirmation(event.Email, event); err != nil {
		w.logger.Error("Failed to send order confirmation",
			zap.String("order_id", event.OrderID), zap.Error(err))
		return err
	}
	util.EmailsSentTotal.WithLabelValues("order_confirmation").Inc()
	return nil
}

func (w *NotificationWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	// Only terminal customer-visible states generate mail; intermediate
	// transitions would flood the inbox.
	if event.To != models.OrderStatusDelivered && event.To != models.OrderStatusCancelled {
		return nil
	}
	if event.Email == "" {
		return nil
	}
	if err := w.mailer.SendOrderStatus(event.Email, event); err != nil {
		w.logger.Error("Failed to send order status mail",
			zap.String("order_id", event.OrderID), zap.Error(err))
		return err
	}
	util.EmailsSentTotal.WithLabelValues("order_status").Inc()
	return nil
}

func (w *NotificationWorker) handleMovementApproved(ctx context.Context, event *models.MovementApprovedEvent) error {
	if w.warehouseTo == "" {
		return nil
	}
	if err := w.mailer.SendMovementApproved(w.warehouseTo, event); err != nil {
		w.logger.Error("Failed to send movement approval mail",
			zap.String("movement_id", event.MovementID), zap.Error(err))
		return err
	}
	util.EmailsSentTotal.WithLabelValues("movement_approved").Inc()
	return nil
}
