// Package config содержит логику чтения конфигурации сервиса заказов.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// PayPalLiveBase — адрес боевого API PayPal.
	PayPalLiveBase = "https://api-m.paypal.com"
	// PayPalSandboxBase — адрес песочницы PayPal.
	PayPalSandboxBase = "https://api-m.sandbox.paypal.com"

	defaultRunAddress  = "localhost:8080"
	defaultEnvironment = "development"
	environmentProd    = "production"
)

// Config содержит параметры конфигурации сервиса заказов.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	Environment string `env:"APP_ENV"`
	AuthSecret  string `env:"AUTH_SECRET"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	PayPalClientID string        `env:"PAYPAL_CLIENT_ID"`
	PayPalSecret   string        `env:"PAYPAL_SECRET"`
	PayPalBaseURL  string        `env:"PAYPAL_API_BASE"`
	PayPalCurrency string        `env:"PAYPAL_CURRENCY" envDefault:"USD"`
	PayPalTimeout  time.Duration `env:"PAYPAL_TIMEOUT" envDefault:"10s"`

	RedisAddr string `env:"REDIS_ADDR"`
	RabbitURL string `env:"RABBIT_URL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Непустое значение переменной окружения имеет приоритет над флагом.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envEnvironment := cfg.Environment

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.Environment, "e", defaultEnvironment, "deployment environment (production selects live PayPal)")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envEnvironment != "" {
		cfg.Environment = envEnvironment
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}

	return cfg, nil
}

// IsProduction сообщает, запущен ли сервис в боевом окружении.
func (c *Config) IsProduction() bool {
	return c.Environment == environmentProd
}

// PayPalAPIBase возвращает базовый адрес API PayPal с учётом окружения.
func (c *Config) PayPalAPIBase() string {
	if c.PayPalBaseURL != "" {
		return c.PayPalBaseURL
	}
	if c.IsProduction() {
		return PayPalLiveBase
	}
	return PayPalSandboxBase
}
