package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"route-divergence-service/internal/divergence"
)

const (
	defaultPollInterval    = 900_000 * time.Millisecond
	defaultProviderTimeout = 10 * time.Second
)

var knownProviders = []string{"google", "tomtom", "ola"}

// ConfigError represents an invalid or missing configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

type Config struct {
	AppEnv     string
	Port       string
	RoutesPath string

	PollInterval      time.Duration
	ProviderTimeout   time.Duration
	Providers         []string
	ReferenceProvider string
	Divergence        divergence.Config

	GoogleAPIKey string
	TomTomAPIKey string
	OlaAPIKey    string

	Sink        string
	DataDir     string
	DBPath      string
	DatabaseURL string
	Redis       RedisConfig

	Alerts       string
	RabbitMQURL  string
	KafkaBrokers []string
	AlertTopic   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found (using environment variables)")
	}

	providers := splitList(Get("PROVIDERS", strings.Join(knownProviders, ",")))

	cfg := &Config{
		AppEnv:     Get("APP_ENV", "development"),
		Port:       Get("PORT", "3000"),
		RoutesPath: Get("ROUTES_PATH", "routes.json"),

		PollInterval:      getMillis("POLL_INTERVAL_MS", defaultPollInterval),
		ProviderTimeout:   getMillis("PROVIDER_TIMEOUT_MS", defaultProviderTimeout),
		Providers:         providers,
		ReferenceProvider: strings.ToLower(strings.TrimSpace(os.Getenv("REFERENCE_PROVIDER"))),
		Divergence: divergence.Config{
			SampleCount:  getInt("DIVERGENCE_SAMPLE_COUNT", divergence.DefaultSampleCount),
			AvgThreshold: getFloat("DIVERGENCE_AVG_THRESHOLD_M", divergence.DefaultAvgThreshold),
			MaxThreshold: getFloat("DIVERGENCE_MAX_THRESHOLD_M", divergence.DefaultMaxThreshold),
		},

		GoogleAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		TomTomAPIKey: os.Getenv("TOMTOM_API_KEY"),
		OlaAPIKey:    os.Getenv("OLA_MAPS_API_KEY"),

		Sink:        strings.ToLower(Get("SINK", "file")),
		DataDir:     Get("DATA_DIR", "data"),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:     Get("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},

		Alerts:       strings.ToLower(Get("ALERTS", "log")),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		AlertTopic:   Get("ALERT_TOPIC", "route.divergence"),
	}

	if cfg.ReferenceProvider == "" && len(cfg.Providers) > 0 {
		cfg.ReferenceProvider = cfg.Providers[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints on an already-constructed Config.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Providers) == 0 {
		errs = append(errs, &ConfigError{Field: "PROVIDERS", Message: "at least one provider is required"})
	}
	seen := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if !slices.Contains(knownProviders, p) {
			errs = append(errs, &ConfigError{Field: "PROVIDERS", Message: fmt.Sprintf("unknown provider %q", p)})
		}
		if _, ok := seen[p]; ok {
			errs = append(errs, &ConfigError{Field: "PROVIDERS", Message: fmt.Sprintf("duplicate provider %q", p)})
		}
		seen[p] = struct{}{}
	}
	if !slices.Contains(c.Providers, c.ReferenceProvider) {
		errs = append(errs, &ConfigError{Field: "REFERENCE_PROVIDER", Message: fmt.Sprintf("%q is not in PROVIDERS", c.ReferenceProvider)})
	}

	switch c.Sink {
	case "file", "sqlite", "redis":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, &ConfigError{Field: "DATABASE_URL", Message: "required when SINK=postgres"})
		}
	default:
		errs = append(errs, &ConfigError{Field: "SINK", Message: fmt.Sprintf("unsupported sink %q", c.Sink)})
	}

	switch c.Alerts {
	case "log":
	case "rabbitmq":
		if strings.TrimSpace(c.RabbitMQURL) == "" {
			errs = append(errs, &ConfigError{Field: "RABBITMQ_URL", Message: "required when ALERTS=rabbitmq"})
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			errs = append(errs, &ConfigError{Field: "KAFKA_BROKERS", Message: "required when ALERTS=kafka"})
		}
	default:
		errs = append(errs, &ConfigError{Field: "ALERTS", Message: fmt.Sprintf("unsupported alert transport %q", c.Alerts)})
	}

	return errors.Join(errs...)
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(Get(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

// getMillis reads a millisecond count and returns fallback unless it is a positive integer.
func getMillis(key string, fallback time.Duration) time.Duration {
	ms := getInt(key, 0)
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
