package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

// helper для создания пустого заказа.
func makeOrder() domain.Order {
	return domain.NewOrder("order-1", "ORD-20260101-1234", "customer-1", "totem", time.Now())
}

func product(id string, price string) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "product " + id,
		Category: domain.CategorySnack,
		Price:    decimal.RequireFromString(price),
	}
}

func mustItem(t *testing.T, id string, p domain.Product, qty int, ingredients ...domain.OrderedProductIngredient) domain.OrderedProduct {
	t.Helper()
	item, err := domain.NewOrderedProduct(id, p, qty, "", ingredients)
	if err != nil {
		t.Fatalf("new ordered product: %v", err)
	}
	return item
}

func TestNewOrder_StartsEmpty(t *testing.T) {
	order := makeOrder()

	if order.Status != domain.OrderStatusStarted {
		t.Fatalf("expected status Started, got %s", order.Status)
	}
	if order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected payment status pending, got %d", order.PaymentStatus)
	}
	if len(order.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(order.Items))
	}
	if !order.TotalPrice.IsZero() {
		t.Fatalf("expected zero total, got %s", order.TotalPrice)
	}
}

func TestOrder_AddRemoveRecalculatesTotal(t *testing.T) {
	order := makeOrder()

	itemA := mustItem(t, "item-a", product("p-a", "10.00"), 2)
	itemB := mustItem(t, "item-b", product("p-b", "5.00"), 1, domain.OrderedProductIngredient{
		ID:       "ing-1",
		Name:     "bacon",
		Price:    decimal.RequireFromString("1.00"),
		Quantity: 3,
	})

	order.AddProduct(itemA)
	order.AddProduct(itemB)

	if !itemA.FinalPrice.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("item A final price: got %s", itemA.FinalPrice)
	}
	if !itemB.FinalPrice.Equal(decimal.RequireFromString("8.00")) {
		t.Fatalf("item B final price: got %s", itemB.FinalPrice)
	}
	if !order.TotalPrice.Equal(decimal.RequireFromString("28.00")) {
		t.Fatalf("expected total 28.00, got %s", order.TotalPrice)
	}
	for _, item := range order.Items {
		if item.OrderID != order.ID {
			t.Fatalf("item %s missing order back-reference", item.ID)
		}
	}

	order.RemoveProduct("item-a")
	if !order.TotalPrice.Equal(decimal.RequireFromString("8.00")) {
		t.Fatalf("expected total 8.00 after removal, got %s", order.TotalPrice)
	}

	// Удаление неизвестной позиции ничего не меняет.
	order.RemoveProduct("missing")
	if len(order.Items) != 1 || !order.TotalPrice.Equal(decimal.RequireFromString("8.00")) {
		t.Fatalf("unexpected state after no-op removal: items=%d total=%s", len(order.Items), order.TotalPrice)
	}
}

func TestOrder_TotalMatchesItemsForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	order := makeOrder()
	ids := make([]string, 0)

	for step := 0; step < 200; step++ {
		if len(ids) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(ids))
			order.RemoveProduct(ids[idx])
			ids = append(ids[:idx], ids[idx+1:]...)
		} else {
			id := decimal.NewFromInt(int64(step)).String()
			price := decimal.New(int64(rng.Intn(5000)), -2)
			ingredients := []domain.OrderedProductIngredient{{
				ID:       "ing-" + id,
				Name:     "extra",
				Price:    decimal.New(int64(rng.Intn(300)), -2),
				Quantity: rng.Intn(15) - 2,
			}}
			item, err := domain.NewOrderedProduct(id, domain.Product{ID: "p", Name: "p", Price: price}, rng.Intn(4)+1, "", ingredients)
			if err != nil {
				t.Fatalf("new item: %v", err)
			}
			order.AddProduct(item)
			ids = append(ids, id)
		}

		sum := decimal.Zero
		for _, item := range order.Items {
			unit := item.BasePrice
			for _, ing := range item.Ingredients {
				unit = unit.Add(ing.Price.Mul(decimal.NewFromInt(int64(ing.Quantity))))
			}
			expected := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if !item.FinalPrice.Equal(expected) {
				t.Fatalf("step %d: item %s final price %s, want %s", step, item.ID, item.FinalPrice, expected)
			}
			sum = sum.Add(item.FinalPrice)
		}
		if !order.TotalPrice.Equal(sum) {
			t.Fatalf("step %d: total %s, want %s", step, order.TotalPrice, sum)
		}
	}
}

func TestOrderedProduct_SetIngredientQuantityClamps(t *testing.T) {
	cases := []struct {
		name string
		qty  int
		want int
	}{
		{name: "negative", qty: -5, want: 0},
		{name: "above max", qty: 15, want: 10},
		{name: "in range", qty: 7, want: 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := mustItem(t, "item-1", product("p-1", "5.00"), 1, domain.OrderedProductIngredient{
				ID:       "ing-1",
				Name:     "cheese",
				Price:    decimal.RequireFromString("2.00"),
				Quantity: 1,
			})

			item.SetIngredientQuantity("ing-1", tc.qty)

			if got := item.Ingredients[0].Quantity; got != tc.want {
				t.Fatalf("quantity = %d, want %d", got, tc.want)
			}
			expected := decimal.RequireFromString("5.00").Add(decimal.RequireFromString("2.00").Mul(decimal.NewFromInt(int64(tc.want))))
			if !item.FinalPrice.Equal(expected) {
				t.Fatalf("final price = %s, want %s", item.FinalPrice, expected)
			}
		})
	}
}

func TestOrderedProduct_SetIngredientQuantityUnknownIsNoop(t *testing.T) {
	item := mustItem(t, "item-1", product("p-1", "5.00"), 2)
	before := item.FinalPrice

	item.SetIngredientQuantity("missing", 3)

	if !item.FinalPrice.Equal(before) {
		t.Fatalf("final price changed: %s -> %s", before, item.FinalPrice)
	}
}

func TestOrderedProduct_SetQuantity(t *testing.T) {
	item := mustItem(t, "item-1", product("p-1", "4.50"), 1)

	if err := item.SetQuantity(3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if !item.FinalPrice.Equal(decimal.RequireFromString("13.50")) {
		t.Fatalf("unexpected final price %s", item.FinalPrice)
	}
	if err := item.SetQuantity(0); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := domain.NewOrderedProduct("x", product("p", "1"), 0, "", nil); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestOrder_UpdateItem(t *testing.T) {
	order := makeOrder()
	order.AddProduct(mustItem(t, "item-1", product("p-1", "3.00"), 1))

	err := order.UpdateItem("item-1", func(item *domain.OrderedProduct) error {
		return item.SetQuantity(4)
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if !order.TotalPrice.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("expected total 12.00, got %s", order.TotalPrice)
	}

	if err := order.UpdateItem("missing", func(*domain.OrderedProduct) error { return nil }); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOrder_FinalizeAndRevert(t *testing.T) {
	order := makeOrder()
	previous := order.Status

	if err := order.FinalizeSelection(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if order.Status != domain.OrderStatusAwaitingPayment {
		t.Fatalf("expected AwaitingPayment, got %s", order.Status)
	}
	if order.Editable() {
		t.Fatal("order awaiting payment must not be editable")
	}

	if err := order.FinalizeSelection(); !domain.IsBusinessRule(err) {
		t.Fatalf("expected business rule error on double finalize, got %v", err)
	}

	if err := order.RevertTo(domain.OrderStatusInPreparation); !domain.IsBusinessRule(err) {
		t.Fatalf("expected revert to InPreparation to fail, got %v", err)
	}
	if err := order.RevertTo(previous); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if order.Status != domain.OrderStatusStarted {
		t.Fatalf("expected Started after revert, got %s", order.Status)
	}
	if err := order.RevertTo(previous); !domain.IsBusinessRule(err) {
		t.Fatalf("revert from Started must fail, got %v", err)
	}
}
