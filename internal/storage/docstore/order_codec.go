package docstore

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

// TimeLayout: ISO-8601 в UTC с фиксированной шириной дробной части,
// чтобы лексикографический порядок совпадал с хронологическим.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrMalformedDocument: документ не удаётся разобрать в агрегат.
var ErrMalformedDocument = errors.New("malformed document")

// OrderToDocument раскладывает заказ в типизированный документ.
// Пустые необязательные поля не пишутся: разреженные индексы включают
// только документы, у которых атрибут есть.
func OrderToDocument(order domain.Order) Document {
	doc := Document{
		AttrID:            String(order.ID),
		AttrCreatedAt:     String(FormatTime(order.CreatedAt)),
		AttrStatus:        Int(int64(order.Status)),
		AttrPaymentStatus: Int(int64(order.PaymentStatus)),
		AttrTotalPrice:    Number(order.TotalPrice.String()),
	}
	putOptionalString(doc, AttrCode, order.Code)
	putOptionalString(doc, AttrCustomerID, order.CustomerID)
	putOptionalString(doc, AttrSource, order.Source)

	if len(order.Items) > 0 {
		items := make([]AttributeValue, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, Map(orderedProductToMap(item)))
		}
		doc[AttrItems] = List(items...)
	}
	return doc
}

func orderedProductToMap(item domain.OrderedProduct) map[string]AttributeValue {
	m := map[string]AttributeValue{
		itemID:         String(item.ID),
		itemProductID:  String(item.ProductID),
		itemQuantity:   Int(int64(item.Quantity)),
		itemBasePrice:  Number(item.BasePrice.String()),
		itemFinalPrice: Number(item.FinalPrice.String()),
	}
	putOptionalString(m, itemProductName, item.ProductName)
	putOptionalString(m, itemCategory, string(item.Category))
	putOptionalString(m, itemObservation, item.Observation)

	if len(item.Ingredients) > 0 {
		ingredients := make([]AttributeValue, 0, len(item.Ingredients))
		for _, ing := range item.Ingredients {
			im := map[string]AttributeValue{
				ingredientID:    String(ing.ID),
				ingredientPrice: Number(ing.Price.String()),
				ingredientQty:   Int(int64(ing.Quantity)),
			}
			putOptionalString(im, ingredientBaseID, ing.IngredientID)
			putOptionalString(im, ingredientName, ing.Name)
			ingredients = append(ingredients, Map(im))
		}
		m[itemCustomIngredients] = List(ingredients...)
	}
	return m
}

// OrderFromDocument собирает заказ обратно. Отсутствующие необязательные атрибуты
// получают значения по умолчанию, обратные ссылки восстанавливаются по родителю.
func OrderFromDocument(doc Document) (domain.Order, error) {
	r := reader{attrs: doc, path: "order"}

	order := domain.Order{
		ID:            r.requiredString(AttrID),
		Code:          r.optionalString(AttrCode),
		CustomerID:    r.optionalString(AttrCustomerID),
		CreatedAt:     r.time(AttrCreatedAt),
		Status:        domain.OrderStatus(r.int(AttrStatus, int(domain.OrderStatusStarted))),
		PaymentStatus: domain.PaymentStatus(r.int(AttrPaymentStatus, int(domain.PaymentStatusPending))),
		TotalPrice:    r.decimal(AttrTotalPrice),
		Source:        r.optionalString(AttrSource),
		Items:         []domain.OrderedProduct{},
	}

	for i, raw := range r.list(AttrItems) {
		ir := r.child(raw, fmt.Sprintf("%s[%d]", AttrItems, i))
		item := domain.OrderedProduct{
			ID:          ir.requiredString(itemID),
			OrderID:     order.ID,
			ProductID:   ir.optionalString(itemProductID),
			ProductName: ir.optionalString(itemProductName),
			Category:    domain.ProductCategory(ir.optionalString(itemCategory)),
			BasePrice:   ir.decimal(itemBasePrice),
			Quantity:    ir.int(itemQuantity, 1),
			FinalPrice:  ir.decimal(itemFinalPrice),
			Observation: ir.optionalString(itemObservation),
			Ingredients: []domain.OrderedProductIngredient{},
		}
		for j, rawIng := range ir.list(itemCustomIngredients) {
			gr := ir.child(rawIng, fmt.Sprintf("%s[%d]", itemCustomIngredients, j))
			item.Ingredients = append(item.Ingredients, domain.OrderedProductIngredient{
				ID:               gr.requiredString(ingredientID),
				OrderedProductID: item.ID,
				IngredientID:     gr.optionalString(ingredientBaseID),
				Name:             gr.optionalString(ingredientName),
				Price:            gr.decimal(ingredientPrice),
				Quantity:         gr.int(ingredientQty, 0),
			})
			if gr.err != nil {
				return domain.Order{}, gr.err
			}
		}
		if ir.err != nil {
			return domain.Order{}, ir.err
		}
		order.Items = append(order.Items, item)
	}

	if r.err != nil {
		return domain.Order{}, r.err
	}
	return order, nil
}

// FormatTime приводит момент к формату хранения.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func putOptionalString(m map[string]AttributeValue, key, value string) {
	if value != "" {
		m[key] = String(value)
	}
}

// reader разбирает карту атрибутов и запоминает первую ошибку.
type reader struct {
	attrs map[string]AttributeValue
	path  string
	err   error
}

func (r *reader) child(value AttributeValue, path string) *reader {
	c := &reader{path: r.path + "." + path}
	if value.Kind != KindMap {
		c.fail(path, "expected map")
		return c
	}
	c.attrs = value.M
	return c
}

func (r *reader) fail(key, reason string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s.%s: %s", ErrMalformedDocument, r.path, key, reason)
	}
}

func (r *reader) requiredString(key string) string {
	value, ok := r.attrs[key]
	if !ok || value.Kind != KindString || value.S == "" {
		r.fail(key, "required string attribute is missing")
		return ""
	}
	return value.S
}

func (r *reader) optionalString(key string) string {
	value, ok := r.attrs[key]
	if !ok {
		return ""
	}
	if value.Kind != KindString {
		r.fail(key, "expected string")
		return ""
	}
	return value.S
}

func (r *reader) int(key string, def int) int {
	value, ok := r.attrs[key]
	if !ok {
		return def
	}
	if value.Kind != KindNumber {
		r.fail(key, "expected number")
		return def
	}
	n, err := strconv.Atoi(value.N)
	if err != nil {
		r.fail(key, err.Error())
		return def
	}
	return n
}

func (r *reader) decimal(key string) decimal.Decimal {
	value, ok := r.attrs[key]
	if !ok {
		return decimal.Zero
	}
	if value.Kind != KindNumber {
		r.fail(key, "expected number")
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value.N)
	if err != nil {
		r.fail(key, err.Error())
		return decimal.Zero
	}
	return d
}

func (r *reader) time(key string) time.Time {
	value, ok := r.attrs[key]
	if !ok {
		return time.Time{}
	}
	if value.Kind != KindString {
		r.fail(key, "expected string")
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value.S)
	if err != nil {
		r.fail(key, err.Error())
		return time.Time{}
	}
	return t.UTC()
}

func (r *reader) list(key string) []AttributeValue {
	value, ok := r.attrs[key]
	if !ok {
		return nil
	}
	if value.Kind != KindList {
		r.fail(key, "expected list")
		return nil
	}
	return value.L
}
