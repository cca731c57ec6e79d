package domain

import "context"

const (
	// DefaultPageSize используется, если размер страницы не задан.
	DefaultPageSize = 20
	// MaxPageSize ограничивает размер страницы списка заказов.
	MaxPageSize = 100
)

// ListOrdersQuery задаёт страницу и фильтры списка заказов.
type ListOrdersQuery struct {
	Page       int
	PageSize   int
	Status     *OrderStatus
	CustomerID string
}

// OrderPage: страница заказов. HasNextPage приблизителен: точное количество не считается.
type OrderPage struct {
	Items       []Order
	Page        int
	PageSize    int
	HasNextPage bool
	NextToken   string
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderAlreadyExists, если ID занят.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id string) (Order, error)
	// Save перезаписывает заказ целиком. Проверки версий нет.
	Save(ctx context.Context, order Order) error
	// List возвращает страницу заказов с опциональными фильтрами.
	List(ctx context.Context, query ListOrdersQuery) (OrderPage, error)
	// CodeExists проверяет, занят ли код заказа.
	CodeExists(ctx context.Context, code string) (bool, error)
}

// ProductRepository: хранилище каталога товаров.
type ProductRepository interface {
	ProductCatalog
	Put(ctx context.Context, product Product) error
}
