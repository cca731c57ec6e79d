package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SagaMetrics: метрики саги подтверждения заказа.
type SagaMetrics struct {
	started     prometheus.Counter
	completed   prometheus.Counter
	skipped     prometheus.Counter
	compensated prometheus.Counter
	failed      prometheus.Counter

	duration     prometheus.Histogram
	stepDuration *prometheus.HistogramVec

	active prometheus.Gauge
}

// NewSagaMetrics создаёт метрики саги в registerer (nil: глобальный реестр).
func NewSagaMetrics(registerer prometheus.Registerer) *SagaMetrics {
	counter := func(name, help string) prometheus.Counter {
		return register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "confirmation",
			Name:      name,
			Help:      help,
		}), name)
	}

	return &SagaMetrics{
		started:     counter("started_total", "Order confirmations started"),
		completed:   counter("completed_total", "Order confirmations that reached the payment gateway successfully"),
		skipped:     counter("payment_skipped_total", "Order confirmations persisted without a payment call (no bearer token)"),
		compensated: counter("compensated_total", "Order confirmations rolled back after a gateway failure"),
		failed:      counter("failed_total", "Order confirmations rejected before or during persistence"),
		duration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "confirmation",
			Name:      "duration_seconds",
			Help:      "Duration of order confirmations in seconds",
			Buckets:   prometheus.DefBuckets,
		}), "duration_seconds"),
		stepDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "confirmation",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual confirmation steps in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"step"}), "step_duration_seconds"),
		active: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "confirmation",
			Name:      "in_flight",
			Help:      "Order confirmations currently in progress",
		}), "in_flight"),
	}
}

// Started отмечает начало подтверждения. Возвращённая функция закрывает его
// и пишет длительность.
func (m *SagaMetrics) Started() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.started.Inc()
	m.active.Inc()
	return func() {
		m.active.Dec()
		m.duration.Observe(time.Since(start).Seconds())
	}
}

// Completed: платёж инициирован.
func (m *SagaMetrics) Completed() {
	if m != nil {
		m.completed.Inc()
	}
}

// PaymentSkipped: заказ подтверждён без вызова шлюза.
func (m *SagaMetrics) PaymentSkipped() {
	if m != nil {
		m.skipped.Inc()
	}
}

// Compensated: подтверждение откатано.
func (m *SagaMetrics) Compensated() {
	if m != nil {
		m.compensated.Inc()
	}
}

// Failed: подтверждение отклонено без компенсации.
func (m *SagaMetrics) Failed() {
	if m != nil {
		m.failed.Inc()
	}
}

// ObserveStep записывает длительность шага.
func (m *SagaMetrics) ObserveStep(step string, duration time.Duration) {
	if m != nil {
		m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
	}
}
