package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics: метрики исходящих вызовов платёжного шлюза.
type GatewayMetrics struct {
	attempts *prometheus.CounterVec
	retries  prometheus.Counter
	latency  *prometheus.HistogramVec
}

// NewGatewayMetrics создаёт метрики клиента шлюза в registerer (nil: глобальный реестр).
func NewGatewayMetrics(registerer prometheus.Registerer) *GatewayMetrics {
	return &GatewayMetrics{
		attempts: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "payment_gateway",
			Name:      "attempts_total",
			Help:      "HTTP attempts against the payment gateway by status code (0 for transport errors)",
		}, []string{"code"}), "attempts_total"),
		retries: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "payment_gateway",
			Name:      "retries_total",
			Help:      "Retries scheduled after a retryable gateway failure",
		}), "retries_total"),
		latency: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "payment_gateway",
			Name:      "attempt_duration_seconds",
			Help:      "Latency of single gateway attempts in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code"}), "attempt_duration_seconds"),
	}
}

// ObserveAttempt записывает попытку с HTTP-кодом ответа (0: ответа не было).
func (m *GatewayMetrics) ObserveAttempt(statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(statusCode)
	m.attempts.WithLabelValues(code).Inc()
	m.latency.WithLabelValues(code).Observe(duration.Seconds())
}

// Retry отмечает запланированный повтор.
func (m *GatewayMetrics) Retry() {
	if m != nil {
		m.retries.Inc()
	}
}
