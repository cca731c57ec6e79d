package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/metrics"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/gateway"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/ordercode"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/orders"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/saga"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/docstore"
)

// Dependencies содержит собранные зависимости сервиса.
type Dependencies struct {
	Store        docstore.Store
	Orders       domain.OrderRepository
	Products     domain.ProductRepository
	OrderService *orders.Service
	Confirmer    *saga.Confirmer
	Producer     *kafka.Producer
	Logger       *log.Entry

	closeStore func() error
}

// NewDependencies открывает хранилище, подключает Kafka (если настроена) и собирает сервисы.
func NewDependencies(ctx context.Context, cfg Config, registerer prometheus.Registerer, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	store, closeStore, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Store:      store,
		Orders:     docstore.NewOrderRepository(store, docstore.NewSizeGuard(cfg.MaxDocumentSize), logger.WithField("component", "order-repository")),
		Products:   docstore.NewProductRepository(store),
		Logger:     logger,
		closeStore: closeStore,
	}

	// Сбой Kafka не фатален: события просто не публикуются.
	deps.Producer, _ = initKafkaProducer(cfg, logger)

	codes := ordercode.NewGenerator(deps.Orders, ordercode.WithLogger(logger.WithField("component", "order-code")))
	deps.OrderService = orders.NewService(deps.Orders, deps.Products, codes, serviceOptions(deps, cfg)...)
	deps.Confirmer = createConfirmer(deps, cfg, registerer)
	return deps, nil
}

func serviceOptions(deps *Dependencies, cfg Config) []orders.Option {
	opts := []orders.Option{orders.WithLogger(deps.Logger.WithField("component", "order-service"))}
	if deps.Producer != nil {
		opts = append(opts, orders.WithPublisher(deps.Producer, cfg.KafkaTopic))
	}
	return opts
}

// createConfirmer собирает сагу подтверждения с клиентом шлюза и метриками.
func createConfirmer(deps *Dependencies, cfg Config, registerer prometheus.Registerer) *saga.Confirmer {
	client := gateway.NewClient(cfg.Gateway,
		gateway.WithMetrics(metrics.NewGatewayMetrics(registerer)),
		gateway.WithLogger(deps.Logger.WithField("component", "payment-gateway")),
	)

	opts := []saga.Option{
		saga.WithMetrics(metrics.NewSagaMetrics(registerer)),
		saga.WithLogger(deps.Logger.WithField("component", "confirmation-saga")),
	}
	if deps.Producer != nil {
		opts = append(opts, saga.WithPublisher(deps.Producer, cfg.KafkaTopic))
	}
	return saga.NewConfirmer(deps.Orders, client, cfg.Currency, opts...)
}

// Close освобождает producer и соединения хранилища.
func (d *Dependencies) Close() {
	closeKafka(d.Producer, d.Logger)
	if d.closeStore != nil {
		if err := d.closeStore(); err != nil {
			d.Logger.WithError(err).Warn("failed to close document store")
		}
	}
}
