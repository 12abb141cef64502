package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/utafrali/storefront/internal/i18n"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

const defaultStubSecret = "storefront-stub-secret-change-me"

// Config holds all configuration for the storefront client and the stub API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Locale      string `env:"LOCALE" envDefault:"en"`
	Timezone    string `env:"TIMEZONE" envDefault:"Asia/Seoul"`

	// Storefront API
	APIURL string `env:"STOREFRONT_API_URL" envDefault:"http://localhost:5000/api"`
	Token  string `env:"STOREFRONT_TOKEN"`

	// HTTP client
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	HTTPMaxRetries int           `env:"HTTP_MAX_RETRIES" envDefault:"0"` // opt-in; operations are not retried by default
	GatewayRPS     float64       `env:"GATEWAY_RPS" envDefault:"0"`
	GatewayBurst   int           `env:"GATEWAY_BURST" envDefault:"5"`

	// Circuit breaker
	BreakerTimeout      time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Cache; an empty address disables it.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SizesTTL      time.Duration `env:"CACHE_SIZES_TTL" envDefault:"5m"`
	ProductsTTL   time.Duration `env:"CACHE_PRODUCTS_TTL" envDefault:"1m"`

	// Notifications; no brokers disables the kafka sink.
	KafkaBrokers []string      `env:"KAFKA_BROKERS" envSeparator:","`
	NotifyTopic  string        `env:"NOTIFY_TOPIC" envDefault:"storefront.ui.toast"`
	ToastTTL     time.Duration `env:"TOAST_TTL" envDefault:"3s"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Stub API
	StubPort      int           `env:"STUB_HTTP_PORT" envDefault:"5000"`
	StubJWTSecret string        `env:"STUB_JWT_SECRET" envDefault:"storefront-stub-secret-change-me"`
	StubTokenTTL  time.Duration `env:"STUB_TOKEN_TTL" envDefault:"24h"`
}

// Load reads configuration from the environment, after an optional .env
// file in the working directory.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with explicit .env paths.
func LoadFrom(dotenv ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithDotEnv(cfg, dotenv...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("STOREFRONT_API_URL must be an absolute URL, got %q", c.APIURL)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	c.Locale = i18n.Resolve(c.Locale)

	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.BreakerFailureRatio)
	}
	if c.HTTPMaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.Environment != "development" && c.StubJWTSecret == defaultStubSecret {
		return fmt.Errorf("STUB_JWT_SECRET must be changed from default value in %s environment", c.Environment)
	}
	return nil
}
