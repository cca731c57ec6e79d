package app

import (
	"testing"

	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/messaging/kafka"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer(Config{}, log.WithField("test", "kafka"))
	if err != nil {
		t.Errorf("expected no error for empty brokers, got %v", err)
	}
	if producer != nil {
		t.Error("expected nil producer for empty brokers")
	}
}

func TestInitKafkaProducer_UnreachableBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}

	producer, err := initKafkaProducer(Config{KafkaBrokers: []string{"127.0.0.1:1"}}, log.WithField("test", "kafka"))
	if err == nil {
		closeKafka(producer, log.WithField("test", "kafka"))
		t.Fatal("expected error for unreachable broker")
	}
	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestCloseKafka(t *testing.T) {
	logger := log.WithField("test", "kafka")

	// nil producer игнорируется
	closeKafka(nil, logger)

	mock := mocks.NewSyncProducer(t, nil)
	closeKafka(kafka.NewProducerWithClient(mock, logger), logger)
}
