package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort                = "3131"
	defaultCheckoutTimeoutSec  = 30
	defaultSweepInterval       = time.Hour
	defaultKafkaTopic          = "rental-events"
	defaultMongoDatabase       = "motorent"
	defaultServiceName         = "motorent"
	defaultJWTSecret           = "local_dev_secret"
	defaultAssistantTimeoutSec = 15
	defaultTokenTTL            = 24 * time.Hour
	defaultPaymentLimit        = 10000
)

// Config is read from the environment. Every backend is optional: an empty
// address selects the in-memory implementation.
type Config struct {
	Port             string
	ServiceName      string
	OtelEndpoint     string
	DatabaseURL      string
	RedisAddr        string
	MongoURI         string
	MongoDatabase    string
	KafkaBrokers     []string
	KafkaTopic       string
	AssistantURL     string
	AssistantTimeout time.Duration
	LokiURL          string
	LogFile          string
	JWTSecret        string
	TokenTTL         time.Duration
	PaymentLimit     float64
	CheckoutTimeout  time.Duration
	SweepInterval    time.Duration
	SeedData         bool
}

// Load reads a .env file when present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:             getenv("PORT", defaultPort),
		ServiceName:      getenv("OTEL_SERVICE_NAME", defaultServiceName),
		OtelEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDatabase:    getenv("MONGO_DATABASE", defaultMongoDatabase),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       getenv("KAFKA_TOPIC", defaultKafkaTopic),
		AssistantURL:     os.Getenv("ASSISTANT_FLOWS_URL"),
		AssistantTimeout: seconds("ASSISTANT_TIMEOUT_SECONDS", defaultAssistantTimeoutSec),
		LokiURL:          os.Getenv("LOKI_URL"),
		LogFile:          os.Getenv("LOG_FILE"),
		JWTSecret:        getenv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:         duration("TOKEN_TTL", defaultTokenTTL),
		PaymentLimit:     number("PAYMENT_LIMIT", defaultPaymentLimit),
		CheckoutTimeout:  seconds("CHECKOUT_TIMEOUT_SECONDS", defaultCheckoutTimeoutSec),
		SweepInterval:    duration("RENTAL_SWEEP_INTERVAL", defaultSweepInterval),
		SeedData:         boolean("SEED_DATA", true),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func seconds(k string, def int) time.Duration {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(def) * time.Second
}

func duration(k string, def time.Duration) time.Duration {
	if s := os.Getenv(k); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func number(k string, def float64) float64 {
	if s := os.Getenv(k); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func boolean(k string, def bool) bool {
	if s := os.Getenv(k); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return def
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
