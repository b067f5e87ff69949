package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pricepoint-backend/internal/pricing"
)

// Config — конфигурация сервера и CLI
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Client   ClientConfig   `mapstructure:"client"`
}

// ServerConfig — HTTP-сервер
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"`
	Seed         bool   `mapstructure:"seed"`
}

// DatabaseConfig — драйвер postgres или sqlite и DSN
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// PricingConfig — формула расчёта
type PricingConfig struct {
	Mode       string  `mapstructure:"mode"`
	NumberRate float64 `mapstructure:"number_rate"`
}

// LoggingConfig — уровень и формат логов
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelegramConfig — значения по умолчанию, если в settings пусто
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// ClientConfig — CLI: адрес API и локальное хранилище
type ClientConfig struct {
	APIBase string `mapstructure:"api_base"`
	Timeout string `mapstructure:"timeout"`
	LocalDB string `mapstructure:"local_db"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.seed", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "pricepoint.db")
	v.SetDefault("pricing.mode", string(pricing.ModeProduct))
	v.SetDefault("pricing.number_rate", pricing.DefaultNumberRate)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("client.api_base", "http://localhost:8080")
	v.SetDefault("client.timeout", "3s")
	v.SetDefault("client.local_db", "pricepoint-local.db")
}

// Load читает yaml-файл (если путь не пустой) и переменные окружения
// PRICEPOINT_*, плюс DATABASE_URL и PORT.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PRICEPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.dsn", "PRICEPOINT_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("server.port", "PRICEPOINT_SERVER_PORT", "PORT")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// postgres-DSN из DATABASE_URL без явного драйвера
	if !v.IsSet("database.driver") && looksLikePostgres(cfg.Database.DSN) {
		cfg.Database.Driver = "postgres"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func looksLikePostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid database.driver: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if _, err := pricing.ParseMode(c.Pricing.Mode); err != nil {
		return err
	}
	if c.Pricing.NumberRate <= 0 {
		return fmt.Errorf("pricing.number_rate must be > 0")
	}

	for key, d := range map[string]string{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"server.idle_timeout":  c.Server.IdleTimeout,
		"client.timeout":       c.Client.Timeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}
	return nil
}

// Calculator собирает калькулятор из настроек pricing
func (c *PricingConfig) Calculator() *pricing.Calculator {
	mode, _ := pricing.ParseMode(c.Mode)
	return pricing.New(mode, c.NumberRate)
}

func duration(s string, def time.Duration) time.Duration {
	d, _ := time.ParseDuration(s)
	if d == 0 {
		return def
	}
	return d
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *ServerConfig) GetReadTimeout() time.Duration { return duration(c.ReadTimeout, 15*time.Second) }

// GetWriteTimeout returns the write timeout as time.Duration
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return duration(c.WriteTimeout, 30*time.Second)
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *ServerConfig) GetIdleTimeout() time.Duration { return duration(c.IdleTimeout, 60*time.Second) }

// GetTimeout — таймаут запросов к API (и проверки доступности бэкенда)
func (c *ClientConfig) GetTimeout() time.Duration { return duration(c.Timeout, 3*time.Second) }
