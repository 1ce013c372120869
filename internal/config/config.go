package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig `mapstructure:"server"`
	ServiceName string       `mapstructure:"service_name"`
	Debug       bool         `mapstructure:"debug"`
	LogLevel    string       `mapstructure:"log_level"`

	// Request audit settings. Flat keys, shared with the other services.
	EnableRequestLogging bool   `mapstructure:"enable_request_logging"`
	LogRequestBody       bool   `mapstructure:"log_request_body"`
	LogResponseBody      bool   `mapstructure:"log_response_body"`
	MaxLogBodySize       int    `mapstructure:"max_log_body_size"`
	LoggingServiceURL    string `mapstructure:"logging_service_url"`

	Logging LoggingConfig `mapstructure:"logging"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Email   EmailConfig   `mapstructure:"email"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Rate    RateConfig    `mapstructure:"rate"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LoggingConfig tunes the audit emitter, not the local slog output.
type LoggingConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	QueueSize      int `mapstructure:"queue_size"`
	Workers        int `mapstructure:"workers"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type EmailConfig struct {
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	// TemplateDir overrides the embedded templates when set.
	TemplateDir  string `mapstructure:"template_dir"`
	SupportInbox string `mapstructure:"support_inbox"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
}

type RateConfig struct {
	RPS   float64 `mapstructure:"rps"` // 0 表示不限流
	Burst int     `mapstructure:"burst"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. NOTIGATE_SMTP_PASSWORD, NOTIGATE_LOGGING_SERVICE_URL
	viper.SetEnvPrefix("notigate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8030")
	viper.SetDefault("service_name", "notification-service")
	viper.SetDefault("debug", false)
	viper.SetDefault("log_level", "info")

	viper.SetDefault("enable_request_logging", true)
	viper.SetDefault("log_request_body", true)
	viper.SetDefault("log_response_body", true)
	viper.SetDefault("max_log_body_size", 10000)
	viper.SetDefault("logging_service_url", "http://127.0.0.1:8020")
	viper.SetDefault("logging.timeout_seconds", 5)
	viper.SetDefault("logging.queue_size", 1000)
	viper.SetDefault("logging.workers", 4)

	viper.SetDefault("smtp.host", "smtp.gmail.com")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("email.from_name", "Notification Service")
	viper.SetDefault("email.template_dir", "")
	viper.SetDefault("email.support_inbox", "")

	viper.SetDefault("auth.require_api_key", false)
	viper.SetDefault("auth.api_key", "")
	viper.SetDefault("rate.rps", 0)
	viper.SetDefault("rate.burst", 20)
	viper.SetDefault("redis.idempotency_ttl_seconds", 86400)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("cors.allowed_origins", []string{"*"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
