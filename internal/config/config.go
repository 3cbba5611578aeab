package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SessionTTL      time.Duration

	PageSize      int
	AuditSchedule string

	LogLevel      string
	LogsDirectory string

	SeedPath string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment without touching .env.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:          Get("PORT", "8080"),
		DBDriver:      Get("DB_DRIVER", "sqlite"),
		DatabaseURL:   Get("DATABASE_URL", "data/app.db"),
		RedisAddr:     Get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AuditSchedule: Get("AUDIT_SCHEDULE", "@every 15m"),
		LogLevel:      Get("LOG_LEVEL", "info"),
		LogsDirectory: os.Getenv("LOGS_DIRECTORY"),
		SeedPath:      Get("SEED_PATH", "data/seeds/fleet.yaml"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.PageSize, err = getInt("PAGE_SIZE", 10); err != nil {
		errs = append(errs, err)
	} else if cfg.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize))
	}
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 14*24*time.Hour); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Get returns the value of key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
