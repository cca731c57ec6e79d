package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductBaseIngredient: ингредиент, который клиент может добавить к товару.
type ProductBaseIngredient struct {
	ID        string
	ProductID string
	Name      string
	Price     decimal.Decimal
}

// Product: товар каталога. Заказы ссылаются на него по ID и хранят собственный снимок.
type Product struct {
	ID          string
	Name        string
	Category    ProductCategory
	Price       decimal.Decimal
	Description string
	Ingredients []ProductBaseIngredient
}

// Ingredient ищет базовый ингредиент товара.
func (p Product) Ingredient(id string) (ProductBaseIngredient, bool) {
	for _, ingredient := range p.Ingredients {
		if ingredient.ID == id {
			return ingredient, true
		}
	}
	return ProductBaseIngredient{}, false
}

// Validate проверяет обязательные поля товара.
func (p Product) Validate() []error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if p.Price.IsNegative() {
		errs = append(errs, ErrPriceInvalid)
	}
	for _, ingredient := range p.Ingredients {
		if strings.TrimSpace(ingredient.Name) == "" {
			errs = append(errs, ErrNameRequired)
		}
		if ingredient.Price.IsNegative() {
			errs = append(errs, ErrPriceInvalid)
		}
	}

	return errs
}
