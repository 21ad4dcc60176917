package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	// База часовых поясов внутри бинарника: образ может не содержать zoneinfo
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/rx3lixir/event-discovery/internal/dataloader"
	"github.com/rx3lixir/event-discovery/internal/opensearch/client"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

// EnvPrefix - префикс переменных окружения: DISCOVERY_HTTP_ADDR и т.д.
const EnvPrefix = "DISCOVERY"

// Поддерживаемые исполнители запросов
const (
	BackendOpenSearch = "opensearch"
	BackendPostgres   = "postgres"
)

var ErrPostgresDSNRequired = errors.New("postgres.dsn is required for the postgres backend")

type Config struct {
	Service    ServiceConfig   `mapstructure:"service"`
	HTTP       HTTPConfig      `mapstructure:"http"`
	GRPC       GRPCConfig      `mapstructure:"grpc"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
	Health     HealthConfig    `mapstructure:"health"`
	Logger     logger.Config   `mapstructure:"logger"`
	OpenSearch client.Config   `mapstructure:"opensearch"`
	Postgres   PostgresConfig  `mapstructure:"postgres"`
	Discovery  DiscoveryConfig `mapstructure:"discovery"`
	Sync       SyncConfig      `mapstructure:"sync"`
}

type ServiceConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development staging production"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

type HealthConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	CheckTimeout time.Duration `mapstructure:"check_timeout" validate:"min=100ms"`
	MaxHeapBytes uint64        `mapstructure:"max_heap_bytes"`
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns" validate:"min=1,max=100"`
	Table    string `mapstructure:"table" validate:"required"`
}

// SyncConfig - заполнение индекса из PostgreSQL и сверка исполнителей
type SyncConfig struct {
	OnStartup        bool `mapstructure:"on_startup"`
	BatchSize        int  `mapstructure:"batch_size" validate:"min=0,max=1000"`
	ForceSync        bool `mapstructure:"force_sync"`
	ConsistencyCheck bool `mapstructure:"consistency_check"`
}

// Loader возвращает настройки загрузчика данных
func (s SyncConfig) Loader() *dataloader.SyncConfig {
	return &dataloader.SyncConfig{
		BatchSize: s.BatchSize,
		ForceSync: s.ForceSync,
	}
}

type DiscoveryConfig struct {
	Backend               string `mapstructure:"backend" validate:"required,oneof=opensearch postgres"`
	Timezone              string `mapstructure:"timezone" validate:"required"`
	StructuredTimeFilters bool   `mapstructure:"structured_time_filters"`
	DefaultPageSize       int    `mapstructure:"default_page_size" validate:"min=1,max=100"`
	MaxPageSize           int    `mapstructure:"max_page_size" validate:"min=1,max=500,gtefield=DefaultPageSize"`
}

// Location возвращает часовой пояс, в котором считаются окна времени
func (d DiscoveryConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// Load читает конфигурацию: значения по умолчанию, затем YAML файл (если path не пуст),
// затем переменные окружения с префиксом DISCOVERY_.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет теги validate и зависимости между секциями
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Discovery.Backend {
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return ErrPostgresDSNRequired
		}
	case BackendOpenSearch:
		if err := c.OpenSearch.Validate(); err != nil {
			return fmt.Errorf("invalid opensearch config: %w", err)
		}
	}

	if _, err := c.Discovery.Location(); err != nil {
		return err
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "event-discovery")
	v.SetDefault("service.version", "dev")
	v.SetDefault("service.environment", "development")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.addr", ":9091")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":8091")

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.addr", ":8092")
	v.SetDefault("health.check_timeout", 5*time.Second)
	v.SetDefault("health.max_heap_bytes", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.output_path", "")

	osDefaults := client.DefaultConfig()
	v.SetDefault("opensearch.url", "http://localhost:9200")
	v.SetDefault("opensearch.index_name", osDefaults.IndexName)
	v.SetDefault("opensearch.timeout", osDefaults.Timeout)
	v.SetDefault("opensearch.max_retries", osDefaults.MaxRetries)
	v.SetDefault("opensearch.max_idle_conns", osDefaults.MaxIdleConns)
	v.SetDefault("opensearch.insecure_skip_verify", osDefaults.InsecureSkipVerify)
	v.SetDefault("opensearch.retry_on_status", osDefaults.RetryOnStatus)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.table", "events")

	syncDefaults := dataloader.DefaultSyncConfig()
	v.SetDefault("sync.on_startup", true)
	v.SetDefault("sync.batch_size", syncDefaults.BatchSize)
	v.SetDefault("sync.force_sync", syncDefaults.ForceSync)
	v.SetDefault("sync.consistency_check", false)

	v.SetDefault("discovery.backend", BackendOpenSearch)
	v.SetDefault("discovery.timezone", "UTC")
	v.SetDefault("discovery.structured_time_filters", true)
	v.SetDefault("discovery.default_page_size", 20)
	v.SetDefault("discovery.max_page_size", 100)
}
