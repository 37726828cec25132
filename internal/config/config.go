package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the full application configuration, populated from
// environment variables. Load once in main, pass down through the container.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	MinIO    MinIOConfig
	Import   ImportConfig
	Jobs     JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ImportConfig tunes the bulk import pipeline.
type ImportConfig struct {
	DefaultCurrency      string // fallback when a sheet has no currency column
	MaxRows              int    // hard cap per uploaded file
	ArtifactPrefix       string // object-key prefix for audit artifacts
	ArtifactTTLDays      int    // retention for audit artifacts (worker prune job)
	TemplateCacheMinutes int
}

// JobConfig holds cron schedules for the worker.
type JobConfig struct {
	PruneArtifactsCron string
}

// Load reads config from environment variables with sane local defaults.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Bookquote API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "bookquote"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "bookquote"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Import: ImportConfig{
			DefaultCurrency:      getEnv("IMPORT_DEFAULT_CURRENCY", "USD"),
			MaxRows:              getEnvInt("IMPORT_MAX_ROWS", 5000),
			ArtifactPrefix:       getEnv("IMPORT_ARTIFACT_PREFIX", "imports"),
			ArtifactTTLDays:      getEnvInt("IMPORT_ARTIFACT_TTL_DAYS", 90),
			TemplateCacheMinutes: getEnvInt("IMPORT_TEMPLATE_CACHE_MINUTES", 30),
		},
		Jobs: JobConfig{
			PruneArtifactsCron: getEnv("JOB_PRUNE_ARTIFACTS_CRON", "0 3 * * *"),
		},
	}

	if cfg.Database.Password == "" && cfg.App.Environment == "production" {
		return nil, fmt.Errorf("DB_PASSWORD is required in production")
	}
	if cfg.JWT.Secret == "your-secret-key-change-in-production" && cfg.App.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// DSN builds the postgres connection string for pgxpool.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d pool_min_conns=%d",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode, d.MaxConns, d.MinConns,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
