package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort          string        `mapstructure:"HTTP_PORT"`
	MongoURI          string        `mapstructure:"MONGO_URI"`
	MongoDBName       string        `mapstructure:"MONGO_DB_NAME"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	KafkaBrokers      string        `mapstructure:"KAFKA_BROKERS"`
	StripeSecretKey   string        `mapstructure:"STRIPE_SECRET_KEY"`
	ClientURL         string        `mapstructure:"CLIENT_URL"`
	AccessTokenSecret string        `mapstructure:"ACCESS_TOKEN_SECRET"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogFormat         string        `mapstructure:"LOG_FORMAT"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	FeaturedCacheTTL  time.Duration `mapstructure:"FEATURED_CACHE_TTL"`
}

var defaults = map[string]any{
	"HTTP_PORT":           "8080",
	"MONGO_URI":           "mongodb://localhost:27017",
	"MONGO_DB_NAME":       "storefront",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"KAFKA_BROKERS":       "",
	"STRIPE_SECRET_KEY":   "",
	"CLIENT_URL":          "http://localhost:5173",
	"ACCESS_TOKEN_SECRET": "",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
	"REQUEST_TIMEOUT":     30 * time.Second,
	"SHUTDOWN_TIMEOUT":    10 * time.Second,
	"FEATURED_CACHE_TTL":  15 * time.Minute,
}

// Load reads configuration from the environment. When CONFIG_FILE is set the
// file (.env, yaml, json) is read first and the environment overrides it.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.StripeSecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is required"))
	}
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// Brokers splits KAFKA_BROKERS on commas. An empty result disables events.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
