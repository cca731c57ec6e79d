package docstore

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

// orderRepository хранит заказы в документном хранилище, по документу на заказ.
type orderRepository struct {
	store  Store
	guard  SizeGuard
	logger *log.Entry
}

// NewOrderRepository создаёт OrderRepository поверх Store.
func NewOrderRepository(store Store, guard SizeGuard, logger *log.Entry) domain.OrderRepository {
	if logger == nil {
		logger = log.New().WithField("component", "order-repository")
	}
	return &orderRepository{store: store, guard: guard, logger: logger}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	if err := r.guard.Validate(order); err != nil {
		return err
	}
	err := r.store.PutItem(ctx, OrdersTable.Name, OrderToDocument(order), PutOptions{IfNotExists: true})
	if errors.Is(err, ErrConditionFailed) {
		return fmt.Errorf("%w: %s", domain.ErrOrderAlreadyExists, order.ID)
	}
	if err != nil {
		return fmt.Errorf("put order %s: %w", order.ID, err)
	}
	return nil
}

// Get возвращает заказ или ErrOrderNotFound.
func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	doc, err := r.store.GetItem(ctx, OrdersTable.Name, id)
	if errors.Is(err, ErrItemNotFound) {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	order, err := OrderFromDocument(doc)
	if err != nil {
		return domain.Order{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	return order, nil
}

// Save перезаписывает документ заказа целиком.
func (r *orderRepository) Save(ctx context.Context, order domain.Order) error {
	if err := r.guard.Validate(order); err != nil {
		return err
	}
	if err := r.store.PutItem(ctx, OrdersTable.Name, OrderToDocument(order), PutOptions{}); err != nil {
		return fmt.Errorf("put order %s: %w", order.ID, err)
	}
	return nil
}

// List выбирает источник обхода по фильтрам: индекс клиента (с фильтром статуса в памяти),
// индекс статуса или полный обход таблицы.
func (r *orderRepository) List(ctx context.Context, query domain.ListOrdersQuery) (domain.OrderPage, error) {
	req := PageRequest{Page: query.Page, PageSize: query.PageSize}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = domain.DefaultPageSize
	}

	var fetch FetchFunc[domain.Order]
	switch {
	case query.CustomerID != "":
		fetch = r.queryFetch(IndexCustomerCreatedAt, String(query.CustomerID))
		if query.Status != nil {
			status := *query.Status
			fetch = Filter(fetch, func(o domain.Order) bool { return o.Status == status })
		}
	case query.Status != nil:
		fetch = r.queryFetch(IndexStatusCreatedAt, Int(int64(*query.Status)))
	default:
		fetch = r.scanFetch()
	}

	window, err := Paginate(ctx, req, fetch)
	if err != nil {
		return domain.OrderPage{}, err
	}

	r.logger.WithFields(log.Fields{
		"page":          req.Page,
		"page_size":     req.PageSize,
		"customer_id":   query.CustomerID,
		"returned":      len(window.Items),
		"has_next_page": window.HasNextPage,
	}).Debug("orders listed")

	return domain.OrderPage{
		Items:       window.Items,
		Page:        req.Page,
		PageSize:    req.PageSize,
		HasNextPage: window.HasNextPage,
		NextToken:   window.NextToken,
	}, nil
}

// CodeExists проверяет код по индексу CodeIndex, читая не больше одного документа.
func (r *orderRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	page, err := r.store.Query(ctx, OrdersTable.Name, QueryInput{
		Index:    IndexCode,
		KeyValue: String(code),
		Limit:    1,
	})
	if err != nil {
		return false, fmt.Errorf("query order code %s: %w", code, err)
	}
	return len(page.Items) > 0, nil
}

func (r *orderRepository) scanFetch() FetchFunc[domain.Order] {
	return func(ctx context.Context, limit int, token string) ([]domain.Order, string, error) {
		page, err := r.store.Scan(ctx, OrdersTable.Name, ScanInput{Limit: limit, StartToken: token})
		if err != nil {
			return nil, "", fmt.Errorf("scan orders: %w", err)
		}
		return decodeOrders(page)
	}
}

// queryFetch читает индекс от новых заказов к старым.
func (r *orderRepository) queryFetch(index string, key AttributeValue) FetchFunc[domain.Order] {
	return func(ctx context.Context, limit int, token string) ([]domain.Order, string, error) {
		page, err := r.store.Query(ctx, OrdersTable.Name, QueryInput{
			Index:      index,
			KeyValue:   key,
			Limit:      limit,
			StartToken: token,
			Descending: true,
		})
		if err != nil {
			return nil, "", fmt.Errorf("query orders by %s: %w", index, err)
		}
		return decodeOrders(page)
	}
}

func decodeOrders(page Page) ([]domain.Order, string, error) {
	orders := make([]domain.Order, 0, len(page.Items))
	for _, doc := range page.Items {
		order, err := OrderFromDocument(doc)
		if err != nil {
			return nil, "", err
		}
		orders = append(orders, order)
	}
	return orders, page.NextToken, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
