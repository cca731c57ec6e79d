package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

type productRepository struct {
	store Store
}

// NewProductRepository создаёт каталог товаров поверх Store.
func NewProductRepository(store Store) domain.ProductRepository {
	return &productRepository{store: store}
}

// GetProduct возвращает товар или ErrProductNotFound.
func (r *productRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	doc, err := r.store.GetItem(ctx, ProductsTable.Name, id)
	if errors.Is(err, ErrItemNotFound) {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return ProductFromDocument(doc)
}

// Put сохраняет товар после проверки обязательных полей.
func (r *productRepository) Put(ctx context.Context, product domain.Product) error {
	if errs := product.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := r.store.PutItem(ctx, ProductsTable.Name, ProductToDocument(product), PutOptions{}); err != nil {
		return fmt.Errorf("put product %s: %w", product.ID, err)
	}
	return nil
}
