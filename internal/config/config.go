// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to wire the process.
type Config struct {
	Env           string
	HTTPPort      string
	DataDir       string
	StaticDir     string
	SweepInterval time.Duration
	KafkaBrokers  []string
	CORSOrigins   []string
}

// Load reads config from the environment. A .env file in the working
// directory is merged in when present.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:           get("APP_ENV", "dev"),
		HTTPPort:      get("HTTP_PORT", "8080"),
		DataDir:       get("DATA_DIR", "ledgers"),
		StaticDir:     get("STATIC_DIR", "static"),
		SweepInterval: duration("SWEEP_INTERVAL", 6*time.Hour),
		KafkaBrokers:  list("KAFKA_BROKERS"),
		CORSOrigins:   listDefault("CORS_ORIGINS", []string{"*"}),
	}
}

func get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func list(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func listDefault(key string, def []string) []string {
	if v := list(key); v != nil {
		return v
	}
	return def
}
