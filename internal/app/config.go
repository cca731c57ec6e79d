package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/gateway"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/docstore"
)

const (
	// StorageDriverMemory хранит документы в памяти процесса.
	StorageDriverMemory = "memory"
	// StorageDriverPostgres хранит документы в PostgreSQL (JSONB).
	StorageDriverPostgres = "postgres"

	// EnvPrefix: префикс переменных окружения.
	EnvPrefix = "KOMS"
)

// Config описывает настройки запуска сервиса.
type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	MetricsAddr     string
	ShutdownTimeout time.Duration
	LogLevel        string

	StorageDriver        string
	PostgresDSN          string
	PostgresAutoMigrate  bool
	PostgresMaxOpenConns int
	MaxDocumentSize      int

	KafkaBrokers  []string
	KafkaTopic    string
	KafkaClientID string

	Gateway  gateway.Config
	Currency string
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		ShutdownTimeout:     5 * time.Second,
		LogLevel:            "info",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		MaxDocumentSize:     docstore.DefaultMaxDocumentSize,
		KafkaTopic:          kafka.DefaultTopic,
		KafkaClientID:       "kitchen-oms",
		Gateway:             gateway.DefaultConfig(),
		Currency:            "BRL",
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("http.addr", def.HTTPAddr)
	v.SetDefault("grpc.addr", def.GRPCAddr)
	v.SetDefault("metrics.addr", def.MetricsAddr)
	v.SetDefault("shutdown.timeout", def.ShutdownTimeout)
	v.SetDefault("log.level", def.LogLevel)

	v.SetDefault("storage.driver", def.StorageDriver)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.auto_migrate", def.PostgresAutoMigrate)
	v.SetDefault("postgres.max_open_conns", 0)
	v.SetDefault("storage.max_document_size", def.MaxDocumentSize)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", def.KafkaTopic)
	v.SetDefault("kafka.client_id", def.KafkaClientID)

	v.SetDefault("gateway.base_url", def.Gateway.BaseURL)
	v.SetDefault("gateway.timeout", def.Gateway.Timeout)
	v.SetDefault("gateway.retry_enabled", def.Gateway.RetryEnabled)
	v.SetDefault("gateway.max_attempts", def.Gateway.MaxAttempts)
	v.SetDefault("gateway.retry_delay", def.Gateway.RetryDelay)
	v.SetDefault("gateway.rate_limit", def.Gateway.RateLimit)
	v.SetDefault("gateway.rate_burst", def.Gateway.RateBurst)
	v.SetDefault("payment.currency", def.Currency)
}

// LoadConfig читает настройки из viper: значения по умолчанию, затем файл (если он
// подключён к v) и переменные окружения KOMS_*, например KOMS_STORAGE_DRIVER.
func LoadConfig(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		HTTPAddr:        v.GetString("http.addr"),
		GRPCAddr:        v.GetString("grpc.addr"),
		MetricsAddr:     v.GetString("metrics.addr"),
		ShutdownTimeout: v.GetDuration("shutdown.timeout"),
		LogLevel:        v.GetString("log.level"),

		StorageDriver:        strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		PostgresDSN:          v.GetString("postgres.dsn"),
		PostgresAutoMigrate:  v.GetBool("postgres.auto_migrate"),
		PostgresMaxOpenConns: v.GetInt("postgres.max_open_conns"),
		MaxDocumentSize:      v.GetInt("storage.max_document_size"),

		KafkaBrokers:  splitList(v.GetString("kafka.brokers")),
		KafkaTopic:    v.GetString("kafka.topic"),
		KafkaClientID: v.GetString("kafka.client_id"),

		Gateway: gateway.Config{
			BaseURL:      v.GetString("gateway.base_url"),
			Timeout:      v.GetDuration("gateway.timeout"),
			RetryEnabled: v.GetBool("gateway.retry_enabled"),
			MaxAttempts:  v.GetInt("gateway.max_attempts"),
			RetryDelay:   v.GetDuration("gateway.retry_delay"),
			RateLimit:    v.GetFloat64("gateway.rate_limit"),
			RateBurst:    v.GetInt("gateway.rate_burst"),
		},
		Currency: v.GetString("payment.currency"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("postgres storage requires %s_POSTGRES_DSN", EnvPrefix)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.MaxDocumentSize < 0 {
		return fmt.Errorf("max document size must be non-negative, got %d", c.MaxDocumentSize)
	}
	if strings.TrimSpace(c.Currency) == "" {
		return fmt.Errorf("payment currency is required")
	}
	if c.Gateway.RetryEnabled && c.Gateway.MaxAttempts < 1 {
		return fmt.Errorf("gateway retry requires max attempts >= 1, got %d", c.Gateway.MaxAttempts)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
