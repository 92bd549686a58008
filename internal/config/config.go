package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath переменная окружения, переопределяющая путь к файлу конфигурации
const EnvConfigPath = "CONFIG_PATH"

var (
	// ErrReadConfig возвращается, когда не удалось прочитать или разобрать файл
	ErrReadConfig = errors.New("config: failed to read config")

	// ErrInvalidConfig возвращается, когда конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid config")
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Redis         RedisConfig         `toml:"redis"`
	Catalog       ClientConfig        `toml:"catalog"`
	Identity      ClientConfig        `toml:"identity"`
	Notifications NotificationsConfig `toml:"notifications"`
	Booking       BookingConfig       `toml:"booking"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
	Watch         WatchConfig         `toml:"watch"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int      `toml:"http_port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	IdleTimeout     int      `toml:"idle_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig настройки кэша правил доступности
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	RulesTTL int    `toml:"rules_ttl"` // секунды
}

// ClientConfig настройки HTTP клиента внешнего сервиса
type ClientConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// NotificationsConfig настройки очереди событий бронирования (asynq)
type NotificationsConfig struct {
	Enabled   bool   `toml:"enabled"`
	RedisAddr string `toml:"redis_addr"`
	Queue     string `toml:"queue"`
	MaxRetry  int    `toml:"max_retry"`
}

// BookingConfig настройки арбитра бронирований
type BookingConfig struct {
	SerializationRetries int `toml:"serialization_retries"`
	LockTimeoutMs        int `toml:"lock_timeout_ms"`
}

// RateLimitConfig ограничение частоты запросов на создание бронирования для одного клиента
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// WatchConfig настройки клиентского планировщика обновлений
type WatchConfig struct {
	BaseURL                     string `toml:"base_url"`
	ConflictsIntervalSeconds    int    `toml:"conflicts_interval_seconds"`
	AvailabilityIntervalSeconds int    `toml:"availability_interval_seconds"`
	RequestTimeoutSeconds       int    `toml:"request_timeout_seconds"`
}

// Load читает конфигурацию из файла. Путь можно переопределить через CONFIG_PATH.
func Load(path string) (*Config, error) {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		path = envPath
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults заполняет незаданные значения
func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "beauty_booking"
	}

	if c.Redis.RulesTTL == 0 {
		c.Redis.RulesTTL = 300
	}

	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = 5
	}
	if c.Identity.Timeout == 0 {
		c.Identity.Timeout = 5
	}

	if c.Notifications.Queue == "" {
		c.Notifications.Queue = "bookings"
	}
	if c.Notifications.MaxRetry == 0 {
		c.Notifications.MaxRetry = 5
	}

	if c.Booking.SerializationRetries == 0 {
		c.Booking.SerializationRetries = 3
	}
	if c.Booking.LockTimeoutMs == 0 {
		c.Booking.LockTimeoutMs = 2000
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}

	if c.Watch.BaseURL == "" {
		c.Watch.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.HTTPPort)
	}
	if c.Watch.ConflictsIntervalSeconds == 0 {
		c.Watch.ConflictsIntervalSeconds = 20
	}
	if c.Watch.AvailabilityIntervalSeconds == 0 {
		c.Watch.AvailabilityIntervalSeconds = 120
	}
	if c.Watch.RequestTimeoutSeconds == 0 {
		c.Watch.RequestTimeoutSeconds = 10
	}
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("%w: database.host is required", ErrInvalidConfig)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	if c.Identity.URL == "" {
		return fmt.Errorf("%w: identity.url is required", ErrInvalidConfig)
	}
	if c.Notifications.Enabled && c.Notifications.RedisAddr == "" {
		return fmt.Errorf("%w: notifications.redis_addr is required when notifications are enabled", ErrInvalidConfig)
	}
	if c.Booking.SerializationRetries < 0 {
		return fmt.Errorf("%w: booking.serialization_retries must not be negative", ErrInvalidConfig)
	}
	if c.Booking.LockTimeoutMs < 0 {
		return fmt.Errorf("%w: booking.lock_timeout_ms must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: rate_limit.requests_per_second must be positive", ErrInvalidConfig)
	}
	return nil
}
