// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
)

// Config holds everything the API binary needs to start.
type Config struct {
	Port        string
	JWTSecret   string
	DatabaseURL string
	RedisAddr   string
	SQLitePath  string
	OTELHost    string
	RabbitMQURL string
	RabbitQueue string
	TraceProb   float64
}

// Load reads the configuration, applying defaults for anything unset.
func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "deliveryflow.db"),
		OTELHost:    getEnv("OTEL_HOST", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		RabbitQueue: getEnv("RABBITMQ_QUEUE", "delivery_orders"),
		TraceProb:   getEnvAsFloat("TRACE_PROBABILITY", 1.0),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
