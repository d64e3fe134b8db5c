// Package config загрузка конфигурации сервиса из TOML с переопределением через окружение
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Транспорты уведомлений
const (
	TransportLog     = "log"
	TransportAMQP    = "amqp"
	TransportRedis   = "redis"
	TransportWebhook = "webhook"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

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

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type NotificationsConfig struct {
	Transport string        `toml:"transport"`
	AMQP      AMQPConfig    `toml:"amqp"`
	Redis     RedisConfig   `toml:"redis"`
	Webhook   WebhookConfig `toml:"webhook"`
}

type AMQPConfig struct {
	URL   string `toml:"url"`
	Queue string `toml:"queue"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Stream   string `toml:"stream"`
	MaxLen   int64  `toml:"max_len"`
}

type WebhookConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Load читает TOML файл, затем .env (если есть) и переменные окружения
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidConfig, path, err)
	}

	// .env не обязателен
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные значения
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database host and dbname are required", ErrInvalidConfig)
	}

	switch c.Notifications.Transport {
	case TransportLog:
	case TransportAMQP:
		if c.Notifications.AMQP.URL == "" || c.Notifications.AMQP.Queue == "" {
			return fmt.Errorf("%w: notifications.amqp url and queue are required", ErrInvalidConfig)
		}
	case TransportRedis:
		if c.Notifications.Redis.Addr == "" || c.Notifications.Redis.Stream == "" {
			return fmt.Errorf("%w: notifications.redis addr and stream are required", ErrInvalidConfig)
		}
	case TransportWebhook:
		if c.Notifications.Webhook.URL == "" {
			return fmt.Errorf("%w: notifications.webhook.url is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown notifications.transport %q", ErrInvalidConfig, c.Notifications.Transport)
	}

	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "reservation_service",
		},
		Notifications: NotificationsConfig{
			Transport: TransportLog,
			AMQP:      AMQPConfig{Queue: "reservation.notifications"},
			Redis:     RedisConfig{Stream: "reservation:notifications", MaxLen: 10000},
			Webhook:   WebhookConfig{Timeout: 5},
		},
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Logs.Level, "LOG_LEVEL")
	setString(&cfg.Notifications.Transport, "NOTIFICATIONS_TRANSPORT")
	setString(&cfg.Notifications.AMQP.URL, "RABBITMQ_URL")
	setString(&cfg.Notifications.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Notifications.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Notifications.Webhook.URL, "NOTIFICATIONS_WEBHOOK_URL")

	if err := setInt(&cfg.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Server.HTTPPort, "HTTP_PORT"); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, v)
	}
	*dst = n
	return nil
}
