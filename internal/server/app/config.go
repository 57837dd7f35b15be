package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/internal/server/mail"
	"github.com/aussiebroadwan/stackplate/pkg/httpx"
)

// ErrMissingConfig is wrapped by LoadConfig when required keys are unset.
var ErrMissingConfig = errors.New("missing required configuration")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ResetStoreMemory = "memory"
	ResetStoreRedis  = "redis"
)

type Config struct {
	TokenSecret   string        // Required: AUTH_TOKEN_SECRET, HS256 key
	SessionTTL    time.Duration // Required: AUTH_TOKEN_EXPIRE, seconds
	AccessTTL     time.Duration // Required: AUTH_REQUEST_TOKEN_EXPIRE, seconds
	CompanyName   string        // Required: token issuer
	CompanyDomain string        // Required: token audience

	PasswordPepper string // Optional: mixed into every password hash

	DatabaseURL      string // Required
	DatabaseDriver   string // Optional: sqlite or postgres, inferred from the URL
	DatabaseMaxConns int    // Optional: pool size (default: 100)

	ResetStore    string        // Optional: memory or redis (default: memory)
	RedisAddr     string        // Required when ResetStore is redis
	RedisPassword string        // Optional
	RedisDB       int           // Optional
	ResetKeyTTL   time.Duration // Optional: reset link validity (default: 24h)

	SMTP      mail.Config // Optional: reset mails fail without SMTP_HOST
	PublicURL string      // Optional: base of the reset link

	AdminEmails []string // Optional: granted is_admin at registration
	CORSOrigins []string // Optional: browser origins allowed to call the API

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	LogOutput            io.Writer     // Not from env, defaults to stdout
	Port                 int           // HTTP server port (default: 3001)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Reset key purge interval (default: 1h)

	RateLimits httpx.RateLimitProfiles
}

// LoadConfig reads the process environment. Every missing required key is
// reported in one error, the process must not start half configured.
func LoadConfig() (Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (Config, error) {
	env := envReader{getenv: getenv}

	cfg := Config{
		TokenSecret:    env.required("AUTH_TOKEN_SECRET"),
		SessionTTL:     env.requiredSeconds("AUTH_TOKEN_EXPIRE"),
		AccessTTL:      env.requiredSeconds("AUTH_REQUEST_TOKEN_EXPIRE"),
		CompanyName:    env.required("COMPANY_NAME"),
		CompanyDomain:  env.required("COMPANY_DOMAIN"),
		PasswordPepper: getenv("PASSWORD_PEPPER"),

		DatabaseURL:      env.required("DATABASE_URL"),
		DatabaseDriver:   strings.ToLower(getenv("DATABASE_DRIVER")),
		DatabaseMaxConns: env.intOr("DATABASE_MAX_CONNS", 100),

		ResetStore:    strings.ToLower(env.or("RESET_STORE", ResetStoreMemory)),
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       env.intOr("REDIS_DB", 0),
		ResetKeyTTL:   env.durationOr("RESET_KEY_TTL", domain.DefaultResetWindow),

		SMTP: mail.Config{
			Host:     getenv("SMTP_HOST"),
			Port:     env.intOr("SMTP_PORT", 587),
			Username: getenv("SMTP_USERNAME"),
			Password: getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM"),
		},
		PublicURL: env.or("APP_PUBLIC_URL", "http://localhost:3000"),

		AdminEmails: splitList(getenv("AUTH_ADMIN_EMAILS")),
		CORSOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),

		Env:                  env.or("ENV", "dev"),
		LogLevel:             env.or("LOG_LEVEL", "info"),
		LogFormat:            env.or("LOG_FORMAT", "json"),
		Port:                 env.intOr("PORT", 3001),
		ShutdownGracePeriod:  env.durationOr("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: env.durationOr("HOUSEKEEPING_INTERVAL", time.Hour),

		RateLimits: httpx.RateLimitProfilesFromEnv(getenv),
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	var errs []error
	if len(env.missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(env.missing, ", ")))
	}
	errs = append(errs, env.invalid...)

	if cfg.DatabaseURL != "" {
		driver, dsn, err := resolveDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.DatabaseDriver, cfg.DatabaseURL = driver, dsn
	}

	switch cfg.ResetStore {
	case ResetStoreMemory:
	case ResetStoreRedis:
		if cfg.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("%w: REDIS_ADDR (RESET_STORE=redis)", ErrMissingConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("RESET_STORE must be %q or %q, got %q", ResetStoreMemory, ResetStoreRedis, cfg.ResetStore))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolveDatabase picks the driver, inferring it from the URL scheme when
// not given, and returns the DSN that driver expects.
func resolveDatabase(driver, url string) (string, string, error) {
	lower := strings.ToLower(url)
	isPostgresURL := strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")

	if driver == "" {
		driver = DriverSQLite
		if isPostgresURL {
			driver = DriverPostgres
		}
	}

	switch driver {
	case DriverPostgres:
		return driver, url, nil
	case DriverSQLite:
		dsn := url
		for _, prefix := range []string{"sqlite://", "sqlite:"} {
			if strings.HasPrefix(lower, prefix) {
				dsn = url[len(prefix):]
				break
			}
		}
		return driver, dsn, nil
	default:
		return "", "", fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, driver)
	}
}

// sqliteDSN adds the pragmas we want on file databases.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type envReader struct {
	getenv  func(string) string
	missing []string
	invalid []error
}

func (e *envReader) required(key string) string {
	v := e.getenv(key)
	if v == "" {
		e.missing = append(e.missing, key)
	}
	return v
}

func (e *envReader) requiredSeconds(key string) time.Duration {
	v := e.required(key)
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		e.invalid = append(e.invalid, fmt.Errorf("%s must be a positive number of seconds, got %q", key, v))
		return 0
	}
	return time.Duration(secs) * time.Second
}

func (e *envReader) or(key, def string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return def
}

func (e *envReader) intOr(key string, def int) int {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.invalid = append(e.invalid, fmt.Errorf("%s must be an integer, got %q", key, v))
		return def
	}
	return n
}

func (e *envReader) durationOr(key string, def time.Duration) time.Duration {
	v := e.getenv(key)
	if v == "" {
		return def
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}

	// Try parsing as integer seconds
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}

	e.invalid = append(e.invalid, fmt.Errorf("%s must be a duration, got %q", key, v))
	return def
}
