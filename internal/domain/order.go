package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order агрегирует заказ вместе со встроенными позициями и ингредиентами.
// Позиции принадлежат заказу и хранятся в одном документе.
type Order struct {
	ID            string
	Code          string
	CustomerID    string // пустой для анонимных заказов
	CreatedAt     time.Time
	Status        OrderStatus
	PaymentStatus PaymentStatus
	TotalPrice    decimal.Decimal
	Source        string // канал оформления (totem, app, counter), может быть пустым
	Items         []OrderedProduct
}

// NewOrder создаёт пустой заказ в статусе Started.
func NewOrder(id, code, customerID, source string, now time.Time) Order {
	return Order{
		ID:            id,
		Code:          code,
		CustomerID:    customerID,
		CreatedAt:     now.UTC(),
		Status:        OrderStatusStarted,
		PaymentStatus: PaymentStatusPending,
		TotalPrice:    decimal.Zero,
		Source:        source,
		Items:         []OrderedProduct{},
	}
}

// AddProduct добавляет позицию, проставляет обратную ссылку на заказ и пересчитывает сумму.
func (o *Order) AddProduct(item OrderedProduct) {
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.CalculateTotal()
}

// RemoveProduct удаляет позицию, если она есть. Сумма пересчитывается в любом случае.
func (o *Order) RemoveProduct(itemID string) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			break
		}
	}
	o.CalculateTotal()
}

// Item возвращает позицию по идентификатору.
func (o *Order) Item(itemID string) (OrderedProduct, bool) {
	for _, item := range o.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return OrderedProduct{}, false
}

// UpdateItem применяет изменение к позиции и пересчитывает сумму заказа.
func (o *Order) UpdateItem(itemID string, mutate func(item *OrderedProduct) error) error {
	for i := range o.Items {
		if o.Items[i].ID != itemID {
			continue
		}
		if err := mutate(&o.Items[i]); err != nil {
			return err
		}
		o.CalculateTotal()
		return nil
	}
	return ErrOrderItemNotFound
}

// CalculateTotal суммирует итоговые цены позиций и сохраняет результат.
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.FinalPrice)
	}
	o.TotalPrice = total
	return total
}

// Apply переводит заказ в новый статус через таблицу переходов.
func (o *Order) Apply(event OrderEvent) error {
	next, err := Transition(o.Status, event)
	if err != nil {
		return err
	}
	o.Status = next
	return nil
}

// FinalizeSelection завершает выбор позиций: Started -> AwaitingPayment.
// Проверка наличия позиций выполняется сагой подтверждения.
func (o *Order) FinalizeSelection() error {
	return o.Apply(EventConfirm)
}

// RevertTo откатывает подтверждение к статусу, зафиксированному до него.
// Допустим только обратный ход ребра previous --confirm--> текущий статус.
func (o *Order) RevertTo(previous OrderStatus) error {
	next, err := Transition(previous, EventConfirm)
	if err != nil || next != o.Status {
		return fmt.Errorf("%w: cannot revert %s to %s", ErrInvalidTransition, o.Status, previous)
	}
	o.Status = previous
	return nil
}

// Editable сообщает, можно ли ещё менять состав заказа.
func (o *Order) Editable() bool {
	return o.Status == OrderStatusStarted
}
