package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// RedisAddr enables Redis callback deduplication; empty keeps claims in memory.
	RedisAddr string
	// KafkaBrokers enables the Kafka event publisher; empty logs events instead.
	KafkaBrokers          []string
	KafkaOrderEventsTopic string

	// OTelEndpoint is the OTLP/HTTP collector; empty disables tracing.
	OTelEndpoint string
	OTelInsecure bool

	PaymentLatency      time.Duration
	PaymentDeclineAbove string
	FulfillmentLatency  time.Duration
	CallbackClaimTTL    time.Duration
}

// LoadConfig reads .env when present and then the environment. Unset values
// fall back to local development defaults.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "orderflow")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_ORDER_EVENTS_TOPIC", "order-events")
	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("OTEL_INSECURE", true)
	v.SetDefault("PAYMENT_LATENCY", "1s")
	v.SetDefault("PAYMENT_DECLINE_ABOVE", "")
	v.SetDefault("FULFILLMENT_LATENCY", "500ms")
	v.SetDefault("CALLBACK_CLAIM_TTL", "2m")

	return Config{
		HTTPPort:              v.GetString("HTTP_PORT"),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBUser:                v.GetString("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBName:                v.GetString("DB_NAME"),
		DBSslMode:             v.GetString("DB_SSLMODE"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		KafkaBrokers:          splitList(v.GetString("KAFKA_BROKERS")),
		KafkaOrderEventsTopic: v.GetString("KAFKA_ORDER_EVENTS_TOPIC"),
		OTelEndpoint:          v.GetString("OTEL_ENDPOINT"),
		OTelInsecure:          v.GetBool("OTEL_INSECURE"),
		PaymentLatency:        v.GetDuration("PAYMENT_LATENCY"),
		PaymentDeclineAbove:   v.GetString("PAYMENT_DECLINE_ABOVE"),
		FulfillmentLatency:    v.GetDuration("FULFILLMENT_LATENCY"),
		CallbackClaimTTL:      v.GetDuration("CALLBACK_CLAIM_TTL"),
	}, nil
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
