package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/metrics"
)

const (
	createPaymentPath = "/payment/create"
	maxErrorBody      = 4 << 10
)

// Config: настройки клиента платёжного шлюза.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RetryEnabled включает повторы; без него выполняется ровно одна попытка.
	RetryEnabled bool
	MaxAttempts  int
	// RetryDelay: фиксированная пауза между попытками.
	RetryDelay time.Duration
	// RateLimit: запросов в секунду; 0 отключает ограничение.
	RateLimit float64
	RateBurst int
}

// DefaultConfig возвращает настройки по умолчанию: одна попытка, пауза 1с.
func DefaultConfig() Config {
	return Config{
		Timeout:     10 * time.Second,
		MaxAttempts: 1,
		RetryDelay:  time.Second,
	}
}

func (c Config) attempts() int {
	if !c.RetryEnabled || c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

// Client вызывает POST /payment/create. Повторяются только 5xx, таймауты
// и транспортные ошибки; остальные ответы вне 2xx терминальны.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	metrics *metrics.GatewayMetrics
	logger  *log.Entry
}

// Option настраивает клиент.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// WithMetrics включает метрики вызовов.
func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient создаёт клиент шлюза.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: log.New().WithField("component", "payment-gateway"),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePayment инициирует платёж по снимку заказа.
func (c *Client) CreatePayment(ctx context.Context, bearerToken string, snapshot domain.PaymentSnapshot) (domain.PaymentReceipt, error) {
	if len(snapshot.Items) == 0 {
		return domain.PaymentReceipt{}, &GatewayError{Err: fmt.Errorf("%w: order %s", domain.ErrSnapshotEmpty, snapshot.OrderID)}
	}
	body, err := encodeRequest(snapshot)
	if err != nil {
		return domain.PaymentReceipt{}, &GatewayError{Err: err}
	}

	logger := c.logger.WithField("order_id", snapshot.OrderID)
	maxAttempts := c.cfg.attempts()

	var (
		lastErr    error
		lastStatus int
		attempt    int
	)
	for attempt = 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return domain.PaymentReceipt{}, &GatewayError{Attempts: attempt - 1, Err: err}
			}
		}

		started := time.Now()
		receipt, status, err := c.send(ctx, bearerToken, body)
		c.metrics.ObserveAttempt(status, time.Since(started))
		if err == nil {
			if attempt > 1 {
				logger.WithField("attempt", attempt).Info("payment created after retry")
			}
			return receipt, nil
		}
		lastErr, lastStatus = err, status

		entry := logger.WithFields(log.Fields{"attempt": attempt, "status_code": status}).WithError(err)
		if status == http.StatusUnauthorized {
			entry.Error("payment gateway rejected bearer token")
			break
		}
		if !retryable(ctx, status, err) {
			entry.Warn("payment gateway call failed with terminal error")
			break
		}
		if attempt == maxAttempts {
			entry.Warn("payment gateway call failed, no attempts left")
			break
		}

		entry.WithField("delay", c.cfg.RetryDelay).Warn("payment gateway call failed, retrying")
		c.metrics.Retry()
		if err := sleep(ctx, c.cfg.RetryDelay); err != nil {
			return domain.PaymentReceipt{}, &GatewayError{StatusCode: lastStatus, Attempts: attempt, Err: err}
		}
	}

	return domain.PaymentReceipt{}, &GatewayError{StatusCode: lastStatus, Attempts: min(attempt, maxAttempts), Err: lastErr}
}

// send выполняет одну попытку. Код 0 означает, что ответ не получен.
func (c *Client) send(ctx context.Context, bearerToken string, body []byte) (domain.PaymentReceipt, int, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + createPaymentPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.PaymentReceipt{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.PaymentReceipt{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.PaymentReceipt{}, resp.StatusCode, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}

	var payload createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.PaymentReceipt{}, resp.StatusCode, fmt.Errorf("decode payment response: %w", err)
	}
	return domain.PaymentReceipt{
		PaymentID: payload.PaymentID,
		Status:    payload.Status,
		CreatedAt: payload.CreatedAt,
	}, resp.StatusCode, nil
}

// retryable: 5xx, таймаут или транспортная ошибка. Отмена вызывающим и
// неразборчивый 2xx-ответ не повторяются.
func retryable(ctx context.Context, status int, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if status >= http.StatusInternalServerError {
		return true
	}
	if status != 0 {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return !errors.Is(err, context.Canceled)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.PaymentGateway = (*Client)(nil)
