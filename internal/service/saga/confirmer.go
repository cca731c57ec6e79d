package saga

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/metrics"
)

// ConfirmationResult: итог подтверждения. PaymentID возвращается вызывающему,
// но в заказе не сохраняется.
type ConfirmationResult struct {
	Order          domain.Order
	PaymentID      string
	PaymentSkipped bool
}

// Confirmer проводит подтверждение заказа: Started -> AwaitingPayment, сохранение,
// вызов платёжного шлюза и откат статуса при ошибке шлюза.
type Confirmer struct {
	orders    domain.OrderRepository
	gateway   domain.PaymentGateway
	currency  string
	publisher domain.EventPublisher
	topic     string
	metrics   *metrics.SagaMetrics
	logger    *log.Entry
	now       func() time.Time
}

// Option настраивает Confirmer.
type Option func(*Confirmer)

// WithPublisher включает публикацию событий подтверждения в topic.
func WithPublisher(publisher domain.EventPublisher, topic string) Option {
	return func(c *Confirmer) {
		c.publisher = publisher
		c.topic = topic
	}
}

// WithMetrics включает метрики саги.
func WithMetrics(m *metrics.SagaMetrics) Option {
	return func(c *Confirmer) { c.metrics = m }
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(c *Confirmer) { c.logger = logger }
}

// NewConfirmer создаёт сагу подтверждения. currency уходит в снимок заказа.
func NewConfirmer(orders domain.OrderRepository, gateway domain.PaymentGateway, currency string, opts ...Option) *Confirmer {
	c := &Confirmer{
		orders:   orders,
		gateway:  gateway,
		currency: currency,
		topic:    kafka.DefaultTopic,
		logger:   log.New().WithField("component", "confirmation-saga"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm подтверждает заказ orderID от имени владельца bearerToken.
//
// Запись AwaitingPayment: граница надёжности: после неё статус сохранён, даже если
// шлюз недоступен. Ошибка шлюза откатывает статус к зафиксированному до подтверждения
// и возвращается вызывающему. Без токена шлюз не вызывается, заказ остаётся в AwaitingPayment.
func (c *Confirmer) Confirm(ctx context.Context, orderID, bearerToken string) (ConfirmationResult, error) {
	done := c.metrics.Started()
	defer done()

	logger := c.logger.WithField("order_id", orderID)

	order, err := observe(c, domain.SagaStepLoad, func() (domain.Order, error) {
		return c.orders.Get(ctx, orderID)
	})
	if err != nil {
		c.metrics.Failed()
		return ConfirmationResult{}, err
	}

	if len(order.Items) == 0 {
		c.metrics.Failed()
		return ConfirmationResult{}, fmt.Errorf("%w: order %s", domain.ErrEmptyOrder, orderID)
	}
	if order.Status != domain.OrderStatusStarted {
		c.metrics.Failed()
		return ConfirmationResult{}, fmt.Errorf("%w: order %s is %s", domain.ErrInvalidTransition, orderID, order.Status)
	}

	previous := order.Status
	if err := order.FinalizeSelection(); err != nil {
		c.metrics.Failed()
		return ConfirmationResult{}, err
	}

	// Записи в хранилище доводятся до конца даже после отмены запроса.
	storeCtx := context.WithoutCancel(ctx)
	if _, err := observe(c, domain.SagaStepPersist, func() (struct{}, error) {
		return struct{}{}, c.orders.Save(storeCtx, order)
	}); err != nil {
		c.metrics.Failed()
		logger.WithError(err).Error("persist awaiting payment failed")
		return ConfirmationResult{}, err
	}
	c.publish(logger, c.event(kafka.EventTypeOrderAwaitingPayment, order, previous))

	if strings.TrimSpace(bearerToken) == "" {
		logger.Warn("no bearer token, payment initiation skipped")
		c.metrics.PaymentSkipped()
		return ConfirmationResult{Order: order, PaymentSkipped: true}, nil
	}

	receipt, err := observe(c, domain.SagaStepPayment, func() (domain.PaymentReceipt, error) {
		return c.gateway.CreatePayment(ctx, bearerToken, domain.NewPaymentSnapshot(order, c.currency))
	})
	if err != nil {
		return ConfirmationResult{}, c.compensate(storeCtx, logger, order, previous, err)
	}

	c.metrics.Completed()
	logger.WithFields(log.Fields{"payment_id": receipt.PaymentID, "payment_status": receipt.Status}).Info("payment initiated")

	event := c.event(kafka.EventTypeOrderPaymentRequested, order, 0)
	event.PaymentID = receipt.PaymentID
	c.publish(logger, event)

	return ConfirmationResult{Order: order, PaymentID: receipt.PaymentID}, nil
}

// compensate возвращает статус, зафиксированный до подтверждения, и сохраняет заказ.
// Возвращает исходную ошибку шлюза; сбой отката присоединяется к ней.
func (c *Confirmer) compensate(ctx context.Context, logger *log.Entry, order domain.Order, previous domain.OrderStatus, cause error) error {
	logger = logger.WithError(cause).WithField("revert_to", previous.String())
	logger.Warn("payment initiation failed, reverting confirmation")

	if err := order.RevertTo(previous); err != nil {
		c.metrics.Failed()
		logger.WithField("compensation_error", err.Error()).Error("compensation rejected")
		return errors.Join(cause, err)
	}

	if _, err := observe(c, domain.SagaStepCompensate, func() (struct{}, error) {
		return struct{}{}, c.orders.Save(ctx, order)
	}); err != nil {
		c.metrics.Failed()
		logger.WithField("compensation_error", err.Error()).Error("persist compensation failed, order left in AwaitingPayment")
		return errors.Join(cause, fmt.Errorf("compensate order %s: %w", order.ID, err))
	}

	c.metrics.Compensated()
	event := c.event(kafka.EventTypeOrderCompensated, order, domain.OrderStatusAwaitingPayment)
	event.Reason = cause.Error()
	c.publish(logger, event)
	return cause
}

func (c *Confirmer) event(eventType kafka.EventType, order domain.Order, previous domain.OrderStatus) kafka.OrderEvent {
	event := kafka.NewOrderEvent(eventType, order, c.now())
	if previous != 0 {
		event.PreviousStatus = previous.String()
	}
	return event
}

// publish отправляет событие, если брокер настроен. Ошибка публикации только логируется.
func (c *Confirmer) publish(logger *log.Entry, event kafka.OrderEvent) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishEvent(c.topic, event.OrderID, event); err != nil {
		logger.WithError(err).WithField("event_type", event.EventType).Warn("publish confirmation event failed")
	}
}

func observe[T any](c *Confirmer, step domain.SagaStep, fn func() (T, error)) (T, error) {
	started := time.Now()
	result, err := fn()
	c.metrics.ObserveStep(string(step), time.Since(started))
	return result, err
}
