package docstore

import (
	"fmt"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

// ProductToDocument раскладывает товар каталога в документ.
func ProductToDocument(product domain.Product) Document {
	doc := Document{
		AttrID:           String(product.ID),
		attrProductName:  String(product.Name),
		attrProductPrice: Number(product.Price.String()),
	}
	putOptionalString(doc, attrProductCategory, string(product.Category))
	putOptionalString(doc, attrProductDescription, product.Description)

	if len(product.Ingredients) > 0 {
		ingredients := make([]AttributeValue, 0, len(product.Ingredients))
		for _, ing := range product.Ingredients {
			ingredients = append(ingredients, Map(map[string]AttributeValue{
				ingredientID:    String(ing.ID),
				ingredientName:  String(ing.Name),
				ingredientPrice: Number(ing.Price.String()),
			}))
		}
		doc[attrProductIngredients] = List(ingredients...)
	}
	return doc
}

// ProductFromDocument собирает товар из документа.
func ProductFromDocument(doc Document) (domain.Product, error) {
	r := reader{attrs: doc, path: "product"}

	product := domain.Product{
		ID:          r.requiredString(AttrID),
		Name:        r.optionalString(attrProductName),
		Category:    domain.ProductCategory(r.optionalString(attrProductCategory)),
		Price:       r.decimal(attrProductPrice),
		Description: r.optionalString(attrProductDescription),
		Ingredients: []domain.ProductBaseIngredient{},
	}
	for i, raw := range r.list(attrProductIngredients) {
		ir := r.child(raw, fmt.Sprintf("%s[%d]", attrProductIngredients, i))
		ingredient := domain.ProductBaseIngredient{
			ID:        ir.requiredString(ingredientID),
			ProductID: product.ID,
			Name:      ir.optionalString(ingredientName),
			Price:     ir.decimal(ingredientPrice),
		}
		if ir.err != nil {
			return domain.Product{}, ir.err
		}
		product.Ingredients = append(product.Ingredients, ingredient)
	}
	if r.err != nil {
		return domain.Product{}, r.err
	}
	return product, nil
}
