package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment    string
	DBDSN          string
	HTTPAddr       string
	AMQPURL        string
	EventExchange  string
	MigrationsPath string
	OutboxInterval time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments set plain env vars.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment:    os.Getenv("ENV"),
		DBDSN:          os.Getenv("DB_DSN"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		AMQPURL:        os.Getenv("AMQP_URL"),
		EventExchange:  os.Getenv("EVENT_EXCHANGE"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		OutboxInterval: time.Minute,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.EventExchange == "" {
		cfg.EventExchange = "skillswap.sessions"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}
	if raw := os.Getenv("OUTBOX_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse OUTBOX_INTERVAL: %w", err)
		}
		cfg.OutboxInterval = interval
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
