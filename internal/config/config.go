package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Env  string
	Port string

	StorageDriver string // "postgres" or "memory"
	DatabaseDSN   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration

	AllowedEmailDomain string

	UploadDir      string
	UploadMaxBytes int64

	ReportCacheTTL time.Duration

	AMQPURL   string
	AMQPQueue string

	CORSOrigin string

	AuthRateLimitRPS   int
	AuthRateLimitBurst int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:                env("APP_ENV", "dev"),
		Port:               env("PORT", "8080"),
		StorageDriver:      strings.ToLower(env("STORAGE_DRIVER", "postgres")),
		DatabaseDSN:        env("DATABASE_DSN", "host=localhost user=user password=password dbname=gikomplain port=5432 sslmode=disable"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            envInt("REDIS_DB", 0),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           envDuration("TOKEN_TTL", DefaultTokenTTL),
		AllowedEmailDomain: strings.ToLower(strings.TrimPrefix(env("ALLOWED_EMAIL_DOMAIN", "giki.edu.pk"), "@")),
		UploadDir:          env("UPLOAD_DIR", "./public/uploads"),
		UploadMaxBytes:     int64(envInt("UPLOAD_MAX_BYTES", DefaultUploadMaxBytes)),
		ReportCacheTTL:     envDuration("REPORT_CACHE_TTL", DefaultReportCacheTTL),
		AMQPURL:            os.Getenv("AMQP_URL"),
		AMQPQueue:          env("AMQP_QUEUE", "complaint.events"),
		CORSOrigin:         env("CORS_ORIGIN", "http://localhost:3000"),
		AuthRateLimitRPS:   envInt("AUTH_RATE_LIMIT_RPS", 5),
		AuthRateLimitBurst: envInt("AUTH_RATE_LIMIT_BURST", 10),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "dev" {
			return cfg, errors.New("JWT_SECRET is required outside dev")
		}
		cfg.JWTSecret = "dev-only-secret-change-me"
	}

	switch cfg.StorageDriver {
	case "postgres", "memory":
	default:
		return cfg, errors.New("STORAGE_DRIVER must be postgres or memory")
	}

	return cfg, nil
}

// DevAdminPassword is the seeded admin password when none is configured in dev.
const DevAdminPassword = "admin123"

// AdminCredentials reads ADMIN_EMAIL and ADMIN_PASSWORD for the seeded admin.
// ADMIN_PASSWORD is required outside dev.
func AdminCredentials(cfg Config) (email, password string, err error) {
	email = env("ADMIN_EMAIL", "admin@"+cfg.AllowedEmailDomain)
	password = os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		if cfg.Env != "dev" {
			return "", "", errors.New("ADMIN_PASSWORD is required outside dev")
		}
		password = DevAdminPassword
	}
	return email, password, nil
}
