package domain

import "github.com/shopspring/decimal"

const (
	// MinIngredientQuantity и MaxIngredientQuantity ограничивают количество ингредиента в позиции.
	MinIngredientQuantity = 0
	MaxIngredientQuantity = 10
)

// ProductCategory: категория товара из каталога.
type ProductCategory string

const (
	CategorySnack   ProductCategory = "Snack"
	CategorySide    ProductCategory = "Side"
	CategoryDrink   ProductCategory = "Drink"
	CategoryDessert ProductCategory = "Dessert"
)

// OrderedProductIngredient: снимок ингредиента, выбранного клиентом для позиции.
type OrderedProductIngredient struct {
	ID               string
	OrderedProductID string
	IngredientID     string // ссылка на ProductBaseIngredient в каталоге
	Name             string
	Price            decimal.Decimal
	Quantity         int
}

// OrderedProduct: позиция заказа. Имя, категория и базовая цена копируются из каталога
// в момент добавления, поэтому последующие правки каталога не меняют историю заказов.
type OrderedProduct struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Category    ProductCategory
	BasePrice   decimal.Decimal
	Quantity    int
	FinalPrice  decimal.Decimal
	Observation string
	Ingredients []OrderedProductIngredient
}

// NewOrderedProduct создаёт позицию по снимку товара и сразу считает итоговую цену.
func NewOrderedProduct(id string, product Product, quantity int, observation string, ingredients []OrderedProductIngredient) (OrderedProduct, error) {
	if quantity <= 0 {
		return OrderedProduct{}, ErrItemQtyInvalid
	}
	item := OrderedProduct{
		ID:          id,
		ProductID:   product.ID,
		ProductName: product.Name,
		Category:    product.Category,
		BasePrice:   product.Price,
		Quantity:    quantity,
		Observation: observation,
		Ingredients: make([]OrderedProductIngredient, 0, len(ingredients)),
	}
	for _, ingredient := range ingredients {
		ingredient.OrderedProductID = id
		ingredient.Quantity = clampIngredientQuantity(ingredient.Quantity)
		item.Ingredients = append(item.Ingredients, ingredient)
	}
	item.CalculateFinalPrice()
	return item, nil
}

// CalculateFinalPrice = (базовая цена + Σ цена ингредиента × количество) × количество позиции.
func (p *OrderedProduct) CalculateFinalPrice() decimal.Decimal {
	unit := p.BasePrice
	for _, ingredient := range p.Ingredients {
		unit = unit.Add(ingredient.Price.Mul(decimal.NewFromInt(int64(ingredient.Quantity))))
	}
	p.FinalPrice = unit.Mul(decimal.NewFromInt(int64(p.Quantity)))
	return p.FinalPrice
}

// SetQuantity меняет количество позиции и пересчитывает цену.
func (p *OrderedProduct) SetQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrItemQtyInvalid
	}
	p.Quantity = quantity
	p.CalculateFinalPrice()
	return nil
}

// SetIngredientQuantity ограничивает количество диапазоном [0,10] и пересчитывает цену.
// Неизвестный ингредиент игнорируется.
func (p *OrderedProduct) SetIngredientQuantity(ingredientID string, quantity int) {
	for i := range p.Ingredients {
		if p.Ingredients[i].ID != ingredientID {
			continue
		}
		p.Ingredients[i].Quantity = clampIngredientQuantity(quantity)
		p.CalculateFinalPrice()
		return
	}
}

// SetObservation задаёт комментарий клиента к позиции.
func (p *OrderedProduct) SetObservation(observation string) {
	p.Observation = observation
}

func clampIngredientQuantity(quantity int) int {
	switch {
	case quantity < MinIngredientQuantity:
		return MinIngredientQuantity
	case quantity > MaxIngredientQuantity:
		return MaxIngredientQuantity
	default:
		return quantity
	}
}
