package domain

import "fmt"

// OrderStatus описывает жизненный цикл заказа. Хранится в документе как число.
type OrderStatus int

const (
	// OrderStatusStarted: заказ создан, клиент наполняет корзину.
	OrderStatusStarted OrderStatus = iota + 1
	// OrderStatusAwaitingPayment: выбор завершён, ждём оплату.
	OrderStatusAwaitingPayment
	// OrderStatusInPreparation: оплата подтверждена, кухня готовит.
	OrderStatusInPreparation
	// OrderStatusReadyForPickup: заказ готов к выдаче.
	OrderStatusReadyForPickup
	// OrderStatusCompleted: заказ выдан.
	OrderStatusCompleted
	// OrderStatusCancelled: заказ отменён.
	OrderStatusCancelled
)

var orderStatusNames = map[OrderStatus]string{
	OrderStatusStarted:         "Started",
	OrderStatusAwaitingPayment: "AwaitingPayment",
	OrderStatusInPreparation:   "InPreparation",
	OrderStatusReadyForPickup:  "ReadyForPickup",
	OrderStatusCompleted:       "Completed",
	OrderStatusCancelled:       "Cancelled",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

// ParseOrderStatus принимает имя статуса ("AwaitingPayment") или его номер ("2").
func ParseOrderStatus(raw string) (OrderStatus, error) {
	for status, name := range orderStatusNames {
		if name == raw || fmt.Sprint(int(status)) == raw {
			return status, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown order status %q", ErrValidation, raw)
}

// PaymentStatus описывает состояние оплаты заказа.
type PaymentStatus int

const (
	// PaymentStatusPending: оплата не инициирована или ещё не подтверждена.
	PaymentStatusPending PaymentStatus = iota + 1
	// PaymentStatusApproved: шлюз подтвердил оплату.
	PaymentStatusApproved
	// PaymentStatusRejected: шлюз отклонил оплату.
	PaymentStatusRejected
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusPending:
		return "Pending"
	case PaymentStatusApproved:
		return "Approved"
	case PaymentStatusRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("PaymentStatus(%d)", int(s))
	}
}

// OrderEvent: событие, переводящее заказ между статусами.
type OrderEvent string

const (
	EventConfirm         OrderEvent = "confirm"
	EventPaymentApproved OrderEvent = "payment_approved"
	EventPrepared        OrderEvent = "prepared"
	EventPickedUp        OrderEvent = "picked_up"
	EventCancel          OrderEvent = "cancel"
)

type transitionKey struct {
	from  OrderStatus
	event OrderEvent
}

// Переходы только вперёд. Единственный обратный путь AwaitingPayment -> Started
// выполняется через Order.RevertTo и в таблицу не входит.
var transitions = map[transitionKey]OrderStatus{
	{OrderStatusStarted, EventConfirm}:                 OrderStatusAwaitingPayment,
	{OrderStatusAwaitingPayment, EventPaymentApproved}: OrderStatusInPreparation,
	{OrderStatusInPreparation, EventPrepared}:          OrderStatusReadyForPickup,
	{OrderStatusReadyForPickup, EventPickedUp}:         OrderStatusCompleted,
	{OrderStatusStarted, EventCancel}:                  OrderStatusCancelled,
	{OrderStatusAwaitingPayment, EventCancel}:          OrderStatusCancelled,
}

// Transition вычисляет новый статус для пары (текущий статус, событие).
// Недопустимая пара возвращает ErrInvalidTransition.
func Transition(current OrderStatus, event OrderEvent) (OrderStatus, error) {
	next, ok := transitions[transitionKey{from: current, event: event}]
	if !ok {
		return current, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, current)
	}
	return next, nil
}
