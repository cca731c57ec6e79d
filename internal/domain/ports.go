package domain

import "context"

// PaymentGateway описывает внешний платёжный шлюз.
type PaymentGateway interface {
	// CreatePayment инициирует платёж по снимку заказа от имени владельца bearer-токена.
	CreatePayment(ctx context.Context, bearerToken string, snapshot PaymentSnapshot) (PaymentReceipt, error)
}

// ProductCatalog отдаёт товары для снятия снимка при добавлении позиции.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (Product, error)
}

// OrderCodeGenerator выдаёт уникальные человекочитаемые коды заказов.
type OrderCodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// EventPublisher публикует события заказа во внешний брокер.
type EventPublisher interface {
	PublishEvent(topic string, key string, event interface{}) error
}

// SagaStep задаёт константы шагов для метрик/логов.
type SagaStep string

const (
	SagaStepLoad       SagaStep = "load"
	SagaStepPersist    SagaStep = "persist"
	SagaStepPayment    SagaStep = "payment"
	SagaStepCompensate SagaStep = "compensate"
)
