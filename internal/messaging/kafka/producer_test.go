package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

func sampleEvent() OrderEvent {
	order := domain.NewOrder("order-1", "ORD-20260101-1000", "customer-1", "app", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	order.TotalPrice = decimal.RequireFromString("28.00")
	order.Status = domain.OrderStatusAwaitingPayment
	return NewOrderEvent(EventTypeOrderAwaitingPayment, order, time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC))
}

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer, nil)

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != DefaultTopic {
			t.Errorf("unexpected topic %s", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "order-1" {
			t.Errorf("unexpected key %s", key)
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(EventTypeOrderAwaitingPayment) {
			t.Errorf("unexpected headers %v", msg.Headers)
		}
		value, _ := msg.Value.Encode()
		var decoded map[string]any
		if err := json.Unmarshal(value, &decoded); err != nil {
			t.Errorf("payload is not json: %v", err)
		}
		if decoded["status"] != "AwaitingPayment" || decoded["total_price"] != "28" {
			t.Errorf("unexpected payload %s", value)
		}
		if _, ok := decoded["customer_id"]; ok {
			t.Errorf("payload leaks customer id: %s", value)
		}
		return nil
	})

	if err := producer.PublishEvent(DefaultTopic, "order-1", sampleEvent()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	if err := producer.PublishEvent(DefaultTopic, "order-1", sampleEvent()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_MarshalError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWithClient(mockProducer, nil)

	if err := producer.PublishEvent(DefaultTopic, "order-1", map[string]any{"bad": make(chan int)}); err == nil {
		t.Fatal("expected marshal error")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}
