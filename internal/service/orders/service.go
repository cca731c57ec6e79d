package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/messaging/kafka"
)

// CreateOrderInput: данные для открытия заказа.
type CreateOrderInput struct {
	CustomerID string
	Source     string
}

// IngredientSelection: ингредиент каталога, выбранный клиентом для позиции.
type IngredientSelection struct {
	IngredientID string
	Quantity     int
}

// AddProductInput: позиция, добавляемая в заказ.
type AddProductInput struct {
	ProductID   string
	Quantity    int
	Observation string
	Ingredients []IngredientSelection
}

// Service управляет составом заказа до подтверждения.
type Service struct {
	orders    domain.OrderRepository
	catalog   domain.ProductCatalog
	codes     domain.OrderCodeGenerator
	publisher domain.EventPublisher
	topic     string
	logger    *log.Entry
	now       func() time.Time
	newID     func() string
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher включает публикацию order.created.
func WithPublisher(publisher domain.EventPublisher, topic string) Option {
	return func(s *Service) {
		s.publisher = publisher
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock подменяет часы.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService конструирует сервис заказов.
func NewService(orders domain.OrderRepository, catalog domain.ProductCatalog, codes domain.OrderCodeGenerator, opts ...Option) *Service {
	s := &Service{
		orders:  orders,
		catalog: catalog,
		codes:   codes,
		topic:   kafka.DefaultTopic,
		logger:  log.New().WithField("component", "order-service"),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder открывает пустой заказ в статусе Started.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (domain.Order, error) {
	code, err := s.codes.Generate(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("generate order code: %w", err)
	}

	order := domain.NewOrder(s.newID(), code, input.CustomerID, input.Source, s.now())
	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{"order_id": order.ID, "code": order.Code}).Info("order created")
	if s.publisher != nil {
		event := kafka.NewOrderEvent(kafka.EventTypeOrderCreated, order, s.now())
		if err := s.publisher.PublishEvent(s.topic, order.ID, event); err != nil {
			s.logger.WithError(err).WithField("order_id", order.ID).Warn("publish order.created failed")
		}
	}
	return order, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.orders.Get(ctx, orderID)
}

// ListOrders возвращает страницу заказов.
func (s *Service) ListOrders(ctx context.Context, query domain.ListOrdersQuery) (domain.OrderPage, error) {
	return s.orders.List(ctx, query)
}

// AddProduct снимает копию товара каталога и добавляет её в заказ.
func (s *Service) AddProduct(ctx context.Context, orderID string, input AddProductInput) (domain.Order, error) {
	if input.Quantity <= 0 {
		return domain.Order{}, domain.ErrItemQtyInvalid
	}
	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return domain.Order{}, err
	}

	itemID := s.newID()
	ingredients := make([]domain.OrderedProductIngredient, 0, len(input.Ingredients))
	for _, selection := range input.Ingredients {
		base, ok := product.Ingredient(selection.IngredientID)
		if !ok {
			return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrIngredientNotAllowed, selection.IngredientID)
		}
		ingredients = append(ingredients, domain.OrderedProductIngredient{
			ID:           s.newID(),
			IngredientID: base.ID,
			Name:         base.Name,
			Price:        base.Price,
			Quantity:     selection.Quantity,
		})
	}

	item, err := domain.NewOrderedProduct(itemID, product, input.Quantity, input.Observation, ingredients)
	if err != nil {
		return domain.Order{}, err
	}

	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		order.AddProduct(item)
		return nil
	})
}

// RemoveProduct удаляет позицию из заказа.
func (s *Service) RemoveProduct(ctx context.Context, orderID, itemID string) (domain.Order, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		if _, ok := order.Item(itemID); !ok {
			return domain.ErrOrderItemNotFound
		}
		order.RemoveProduct(itemID)
		return nil
	})
}

// UpdateItemQuantity меняет количество позиции.
func (s *Service) UpdateItemQuantity(ctx context.Context, orderID, itemID string, quantity int) (domain.Order, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.UpdateItem(itemID, func(item *domain.OrderedProduct) error {
			return item.SetQuantity(quantity)
		})
	})
}

// UpdateIngredientQuantity меняет количество ингредиента позиции; значение ограничивается [0,10].
func (s *Service) UpdateIngredientQuantity(ctx context.Context, orderID, itemID, ingredientID string, quantity int) (domain.Order, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.UpdateItem(itemID, func(item *domain.OrderedProduct) error {
			item.SetIngredientQuantity(ingredientID, quantity)
			return nil
		})
	})
}

// UpdateObservation задаёт комментарий к позиции.
func (s *Service) UpdateObservation(ctx context.Context, orderID, itemID, observation string) (domain.Order, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.UpdateItem(itemID, func(item *domain.OrderedProduct) error {
			item.SetObservation(observation)
			return nil
		})
	})
}

// mutate загружает заказ, применяет изменение и сохраняет результат.
func (s *Service) mutate(ctx context.Context, orderID string, change func(order *domain.Order) error) (domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.Editable() {
		return domain.Order{}, fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotEditable, orderID, order.Status)
	}
	if err := change(&order); err != nil {
		return domain.Order{}, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return domain.Order{}, err
	}
	s.logger.WithFields(log.Fields{"order_id": order.ID, "items": len(order.Items), "total": order.TotalPrice.String()}).Debug("order updated")
	return order, nil
}
