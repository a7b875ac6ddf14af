package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cep360-payroll/internal/shared/connection"

	"github.com/joho/godotenv"
)

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	App      AppConfig
	Database connection.DBConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Payroll  PayrollConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Broker  string
	GroupID string
}

type JWTConfig struct {
	Secret string
}

type StorageConfig struct {
	Driver        string
	Dir           string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	CDNBaseURL    string
}

type PayrollConfig struct {
	// Concurrency bounds the per-assignment fan-out of a batch run.
	Concurrency int
	// CloseDay is the day of month from which the scheduler generates
	// invoices for the previous, fully elapsed month.
	CloseDay     int
	TickInterval time.Duration
	Signatory    string
	InsertChunk  int
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: connection.DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "cep360_payroll"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", ""),
			GroupID: getEnv("KAFKA_GROUP_ID", "cep360-invoice-document"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverLocal)),
			Dir:           getEnv("STORAGE_DIR", "storage"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:3000/files"),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Region:      getEnv("S3_REGION", ""),
			CDNBaseURL:    getEnv("CDN_BASE_URL", ""),
		},
		Payroll: PayrollConfig{
			Signatory: getEnv("PAYSLIP_SIGNATORY", "Finance Department"),
		},
	}

	var err error
	if cfg.Payroll.Concurrency, err = getEnvInt("PAYROLL_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.Payroll.CloseDay, err = getEnvInt("PAYROLL_CLOSE_DAY", 1); err != nil {
		return nil, err
	}
	if cfg.Payroll.InsertChunk, err = getEnvInt("PAYROLL_INSERT_CHUNK", 200); err != nil {
		return nil, err
	}
	if cfg.Payroll.TickInterval, err = time.ParseDuration(getEnv("PAYROLL_TICK_INTERVAL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_TICK_INTERVAL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Payroll.Concurrency < 1 {
		errs = append(errs, errors.New("PAYROLL_CONCURRENCY must be at least 1"))
	}
	if c.Payroll.CloseDay < 1 || c.Payroll.CloseDay > 28 {
		errs = append(errs, errors.New("PAYROLL_CLOSE_DAY must be between 1 and 28"))
	}
	if c.Payroll.InsertChunk < 1 {
		errs = append(errs, errors.New("PAYROLL_INSERT_CHUNK must be at least 1"))
	}
	if c.Payroll.TickInterval <= 0 {
		errs = append(errs, errors.New("PAYROLL_TICK_INTERVAL must be positive"))
	}

	switch c.Storage.Driver {
	case StorageDriverLocal:
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("STORAGE_DIR is required for local storage"))
		}
	case StorageDriverS3:
		if c.Storage.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
