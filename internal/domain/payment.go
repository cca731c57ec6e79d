package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotVersion: версия формата снимка заказа, который уходит в платёжный шлюз.
const SnapshotVersion = 1

// PaymentSnapshot: снимок заказа для шлюза. Не содержит персональных данных:
// ни идентификатора клиента, ни канала оформления.
type PaymentSnapshot struct {
	OrderID    string
	Code       string
	CreatedAt  time.Time
	TotalPrice decimal.Decimal
	Currency   string
	Items      []PaymentSnapshotItem
	Version    int
}

// PaymentSnapshotItem: позиция в снимке заказа.
type PaymentSnapshotItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	FinalPrice  decimal.Decimal
	Observation string
	Ingredients []PaymentSnapshotIngredient
}

// PaymentSnapshotIngredient: ингредиент позиции в снимке заказа.
type PaymentSnapshotIngredient struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// NewPaymentSnapshot строит снимок заказа для инициации оплаты.
func NewPaymentSnapshot(order Order, currency string) PaymentSnapshot {
	snapshot := PaymentSnapshot{
		OrderID:    order.ID,
		Code:       order.Code,
		CreatedAt:  order.CreatedAt,
		TotalPrice: order.TotalPrice,
		Currency:   currency,
		Items:      make([]PaymentSnapshotItem, 0, len(order.Items)),
		Version:    SnapshotVersion,
	}
	for _, item := range order.Items {
		entry := PaymentSnapshotItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			FinalPrice:  item.FinalPrice,
			Observation: item.Observation,
			Ingredients: make([]PaymentSnapshotIngredient, 0, len(item.Ingredients)),
		}
		for _, ingredient := range item.Ingredients {
			entry.Ingredients = append(entry.Ingredients, PaymentSnapshotIngredient{
				Name:     ingredient.Name,
				Price:    ingredient.Price,
				Quantity: ingredient.Quantity,
			})
		}
		snapshot.Items = append(snapshot.Items, entry)
	}
	return snapshot
}

// PaymentReceipt: ответ шлюза на создание платежа. Не сохраняется в заказе.
type PaymentReceipt struct {
	PaymentID string
	Status    string
	CreatedAt time.Time
}
