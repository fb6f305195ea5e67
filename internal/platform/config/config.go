// Package config builds process configuration from the environment so main
// stays lean and no package reads env vars on its own.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything cmd/server needs to construct clients. Backends
// are optional; empty endpoints select noop or in-memory implementations.
type Config struct {
	Addr          string
	JWTSigningKey string

	DatabaseURL string

	Redis RedisConfig

	CAS    CASConfig
	Backup BackupConfig

	PublicLedgerURL     string
	ConsortiumLedgerURL string
	// LedgerTimeout bounds every ledger call independently of the record
	// store timeout; ledger latency must never inflate authoritative writes.
	LedgerTimeout time.Duration
	StoreTimeout  time.Duration

	KafkaBrokers []string
	OutboxTopic  string

	// Region and StationCode seed incident report numbers.
	Region      string
	StationCode string

	MaxUploadBytes int64
}

// RedisConfig mirrors the connection tuning we expose for the conversation
// store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CASConfig points at the content-addressable store's pinning API.
type CASConfig struct {
	Endpoint  string
	APIKey    string
	APISecret string
}

// BackupConfig points at the S3-compatible backup object store.
type BackupConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:                envOr("CYBERCELL_ADDR", ":8080"),
		JWTSigningKey:       envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		PublicLedgerURL:     os.Getenv("PUBLIC_LEDGER_URL"),
		ConsortiumLedgerURL: os.Getenv("CONSORTIUM_LEDGER_URL"),
		LedgerTimeout:       durationOr("LEDGER_TIMEOUT", 15*time.Second),
		StoreTimeout:        durationOr("STORE_TIMEOUT", 3*time.Second),
		OutboxTopic:         envOr("LEDGER_OUTBOX_TOPIC", "ledger-mirror-retries"),
		Region:              envOr("REPORT_REGION", "JH"),
		StationCode:         envOr("REPORT_STATION_CODE", "CYB01"),
		MaxUploadBytes:      int64Or("MAX_UPLOAD_BYTES", 10<<20),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     intOr("REDIS_POOL_SIZE", 10),
		MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}

	cfg.CAS = CASConfig{
		Endpoint:  os.Getenv("CAS_ENDPOINT"),
		APIKey:    os.Getenv("CAS_API_KEY"),
		APISecret: os.Getenv("CAS_API_SECRET"),
	}

	cfg.Backup = BackupConfig{
		Endpoint:  os.Getenv("BACKUP_ENDPOINT"),
		AccessKey: os.Getenv("BACKUP_ACCESS_KEY"),
		SecretKey: os.Getenv("BACKUP_SECRET_KEY"),
		Bucket:    envOr("BACKUP_BUCKET", "evidence-backup"),
		UseSSL:    os.Getenv("BACKUP_USE_SSL") == "true",
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func int64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
