package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	Capacity        int
	Timezone        string
	LogLevel        string
	OTelServiceName string
	OTelEndpoint    string
}

// Load reads the process environment, after merging any variables from
// the given .env files that are not already set.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return &Config{
		Port:            envOr("APP_PORT", "8080"),
		Capacity:        envOrPositiveInt("PARKING_CAPACITY", 3),
		Timezone:        envOr("PARKING_TIMEZONE", "Local"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		OTelServiceName: envOr("OTEL_SERVICE_NAME", "parking-ledger"),
		OTelEndpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}, nil
}

// Location resolves Timezone; batch timestamps are read in this zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envOrPositiveInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}
