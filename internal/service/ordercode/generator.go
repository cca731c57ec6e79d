package ordercode

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

const (
	// Prefix: префикс кода заказа.
	Prefix = "ORD"
	// MaxAttempts: сколько кандидатов проверяется до отказа.
	MaxAttempts = 10

	minSuffix = 1000
	maxSuffix = 9999
)

// CodeProbe проверяет, занят ли код.
type CodeProbe interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generator выдаёт коды вида ORD-YYYYMMDD-NNNN. Уникальность проверяется по индексу кодов,
// при коллизии меняется только суффикс.
type Generator struct {
	probe  CodeProbe
	logger *log.Entry
	now    func() time.Time
	intn   func(n int) int
}

// Option настраивает генератор.
type Option func(*Generator)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRandom подменяет источник случайных чисел: intn(n) возвращает значение из [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(g *Generator) { g.intn = intn }
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator создаёт генератор поверх probe.
func NewGenerator(probe CodeProbe, opts ...Option) *Generator {
	g := &Generator{
		probe:  probe,
		logger: log.New().WithField("component", "order-code"),
		now:    time.Now,
		intn:   rand.Intn,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate возвращает свободный код. После MaxAttempts коллизий: ErrOrderCodeExhausted,
// ошибка проверки прерывает подбор сразу.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	date := g.now().UTC().Format("20060102")

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code := fmt.Sprintf("%s-%s-%04d", Prefix, date, minSuffix+g.intn(maxSuffix-minSuffix+1))

		taken, err := g.probe.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check order code %s: %w", code, err)
		}
		if !taken {
			return code, nil
		}
		g.logger.WithFields(log.Fields{"code": code, "attempt": attempt}).Debug("order code collision")
	}

	g.logger.WithField("date", date).Warn("order code space exhausted")
	return "", fmt.Errorf("%w after %d attempts", domain.ErrOrderCodeExhausted, MaxAttempts)
}

var _ domain.OrderCodeGenerator = (*Generator)(nil)
