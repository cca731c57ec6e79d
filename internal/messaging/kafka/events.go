package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

// EventType: тип события заказа.
type EventType string

const (
	EventTypeOrderCreated          EventType = "order.created"
	EventTypeOrderAwaitingPayment  EventType = "order.awaiting_payment"
	EventTypeOrderPaymentRequested EventType = "order.payment_requested"
	EventTypeOrderCompensated      EventType = "order.confirmation_compensated"
)

// DefaultTopic: топик событий заказов по умолчанию.
const DefaultTopic = "koms.order.events"

// HeaderEventType: заголовок с типом события.
const HeaderEventType = "x-event-type"

// OrderEvent: событие жизненного цикла заказа. Идентификатор клиента не публикуется.
type OrderEvent struct {
	EventType      EventType `json:"event_type"`
	OrderID        string    `json:"order_id"`
	Code           string    `json:"code,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	TotalPrice     string    `json:"total_price"`
	PaymentID      string    `json:"payment_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Type возвращает тип события.
func (e OrderEvent) Type() EventType {
	return e.EventType
}

// NewOrderEvent строит событие по текущему состоянию заказа.
func NewOrderEvent(eventType EventType, order domain.Order, now time.Time) OrderEvent {
	return OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID,
		Code:       order.Code,
		Status:     order.Status.String(),
		TotalPrice: order.TotalPrice.String(),
		Timestamp:  now.UTC(),
	}
}
