package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Environment name constants used in ENVIRONMENT config field.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Storage backends selectable via STORAGE.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Development defaults. ValidateForProduction refuses to start with them.
const (
	DefaultAdminSecret      = "admin-dev-secret"
	DefaultRestrictedSecret = "restricted-dev-secret"

	// DefaultSessionEncryptionKey is 32 bytes, an AES-256 key.
	DefaultSessionEncryptionKey = "dev-encryption-key-32-bytes!!!!!"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP
	HTTPAddr string `conf:"default::8080,env:HTTP_ADDR"`

	// Storage
	Storage  string `conf:"default:redis,enum:redis|memory,env:STORAGE"`
	RedisURL string `conf:"default:redis://localhost:6379,env:REDIS_URL"`

	// MinIO/S3 backup destination. The access key id is the persisted backup
	// client id; only the secret lives here.
	MinioEndpoint  string `conf:"default:localhost:9000,env:MINIO_ENDPOINT"`
	MinioBucket    string `conf:"default:stockledger-backups,env:MINIO_BUCKET"`
	MinioSecretKey string `conf:"default:minioadmin,env:MINIO_SECRET_KEY,noprint"`
	MinioUseSSL    bool   `conf:"default:false,env:MINIO_USE_SSL"`

	// Application
	LogLevel    string `conf:"default:info,env:LOG_LEVEL"`
	Environment string `conf:"default:development,enum:development|testing|production,env:ENVIRONMENT"`

	// Shared role secrets. A non-empty *_HASH (bcrypt) takes precedence over
	// the cleartext value.
	AdminSecret          string `conf:"default:admin-dev-secret,env:ADMIN_SECRET,noprint"`
	RestrictedSecret     string `conf:"default:restricted-dev-secret,env:RESTRICTED_SECRET,noprint"`
	AdminSecretHash      string `conf:"env:ADMIN_SECRET_HASH,noprint"`
	RestrictedSecretHash string `conf:"env:RESTRICTED_SECRET_HASH,noprint"`

	// Ledger behaviour
	StrictUpdates bool `conf:"default:false,env:STRICT_UPDATES"`
	StrictSerials bool `conf:"default:false,env:STRICT_SERIALS"`
	// LedgerRefresh is how often the API checks Redis for corpus versions
	// saved by other processes, e.g. stockctl restore. 0 turns polling off.
	LedgerRefresh time.Duration `conf:"default:5s,env:LEDGER_REFRESH_INTERVAL"`

	// Session
	SessionAuthKey       string `conf:"default:dev-auth-key-32-bytes-long!!!!!!,env:SESSION_AUTH_KEY,noprint"`
	SessionEncryptionKey string `conf:"default:dev-encryption-key-32-bytes!!!!!,env:SESSION_ENCRYPTION_KEY,noprint"`

	// CORS: comma-separated list of allowed origins; use * to allow all (dev only)
	CORSAllowedOrigins string `conf:"default:*,env:CORS_ALLOWED_ORIGINS"`

	// Observability
	ServiceName    string  `conf:"default:stockledger,env:SERVICE_NAME"`
	ServiceVersion string  `conf:"default:dev,env:SERVICE_VERSION"`
	OtelEndpoint   string  `conf:"env:OTEL_ENDPOINT"`
	TraceSampling  float64 `conf:"default:1,env:TRACE_SAMPLING"`
	SentryDSN      string  `conf:"env:SENTRY_DSN,noprint"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	var cfg Config
	_ = godotenv.Load()
	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// LoadEnv is Load without command-line parsing, for binaries that own their
// flags (stockctl).
func LoadEnv() (*Config, error) {
	args := os.Args
	os.Args = args[:1]
	defer func() { os.Args = args }()
	return Load()
}

// Validate rejects settings that break the process in any environment.
func Validate(cfg *Config) error {
	var errs []string

	switch len(cfg.SessionEncryptionKey) {
	case 16, 24, 32:
	default:
		errs = append(errs, fmt.Sprintf(
			"SESSION_ENCRYPTION_KEY must be 16, 24 or 32 bytes for AES (got %d)",
			len(cfg.SessionEncryptionKey),
		))
	}

	if cfg.TraceSampling < 0 || cfg.TraceSampling > 1 {
		errs = append(errs, fmt.Sprintf("TRACE_SAMPLING must be within [0,1] (got %g)", cfg.TraceSampling))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
}

// ValidateForProduction runs Validate and, when ENVIRONMENT=production, also
// refuses the development defaults.
func ValidateForProduction(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if cfg.Environment != EnvProduction {
		return nil
	}

	var errs []string

	if len(cfg.SessionAuthKey) < 32 {
		errs = append(errs, fmt.Sprintf(
			"SESSION_AUTH_KEY must be at least 32 bytes (got %d); generate with: openssl rand -base64 32",
			len(cfg.SessionAuthKey),
		))
	}

	if cfg.SessionEncryptionKey == DefaultSessionEncryptionKey {
		errs = append(errs, "SESSION_ENCRYPTION_KEY must be changed from its default; generate with: openssl rand -hex 16")
	}

	if cfg.AdminSecretHash == "" && cfg.AdminSecret == DefaultAdminSecret {
		errs = append(errs, "ADMIN_SECRET must be changed from its default (or set ADMIN_SECRET_HASH)")
	}

	if cfg.RestrictedSecretHash == "" && cfg.RestrictedSecret == DefaultRestrictedSecret {
		errs = append(errs, "RESTRICTED_SECRET must be changed from its default (or set RESTRICTED_SECRET_HASH)")
	}

	if cfg.Storage == StorageMemory {
		errs = append(errs, "STORAGE=memory loses every change on restart")
	}

	if cfg.LogLevel == "debug" {
		errs = append(errs, "LOG_LEVEL must not be 'debug' in production (may leak sensitive data)")
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("production config validation failed: %s", strings.Join(errs, "; "))
}
