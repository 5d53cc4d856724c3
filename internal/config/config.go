package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	FrontendURL string
	Port        string

	// Database (sqlite, pgx or mongo)
	DBDriver     string
	DBConnection string

	// Sessions
	AccessTokenSecret  string
	RefreshTokenSecret string
	ResetTokenSecret   string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ResetTokenTTL      time.Duration
	RefreshRotation    bool

	// Federated login
	GoogleUserInfoURL string

	// Conversion vendor
	CloudConvertAPIKey  string
	CloudConvertSandbox bool
	CloudConvertTimeout time.Duration

	// Uploads
	UploadMaxFiles    int
	UploadMaxFileSize int64

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability
	SentryDSN      string
	MetricsEnabled bool

	// Storage (s3 or minio)
	StorageDriver         string
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string
	S3PresignExpiryPublic time.Duration

	// Rate limiting for auth endpoints
	RateLimitAuth   int
	RateLimitWindow time.Duration

	// Read client IPs from X-Forwarded-For / X-Real-IP (only behind a proxy)
	TrustProxyHeaders bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName:     envString("APP_NAME", "Filetool"),
		AppEnv:      envRequired("APP_ENV"), // 'development' or 'production'
		AppURL:      envString("APP_URL", "http://localhost:8090"),
		FrontendURL: envString("FRONTEND_URL", "http://localhost:5173"),
		Port:        envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/filetool.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		AccessTokenSecret:  envRequired("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: envRequired("REFRESH_TOKEN_SECRET"),
		ResetTokenSecret:   envString("RESET_TOKEN_SECRET", ""),
		AccessTokenTTL:     envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    envDuration("REFRESH_TOKEN_TTL", 168*time.Hour), // 7 days
		ResetTokenTTL:      envDuration("RESET_TOKEN_TTL", 15*time.Minute),
		RefreshRotation:    envBool("REFRESH_ROTATION", false),

		GoogleUserInfoURL: envString("GOOGLE_USERINFO_URL", "https://www.googleapis.com/oauth2/v3/userinfo"),

		CloudConvertAPIKey:  envRequired("CLOUDCONVERT_API_KEY"),
		CloudConvertSandbox: envBool("CLOUDCONVERT_SANDBOX", false),
		CloudConvertTimeout: envDuration("CLOUDCONVERT_TIMEOUT", 10*time.Minute),

		UploadMaxFiles:    envInt("UPLOAD_MAX_FILES", 5),
		UploadMaxFileSize: int64(envInt("UPLOAD_MAX_FILE_SIZE", 100<<20)),

		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		SentryDSN:      envString("SENTRY_DSN", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),

		StorageDriver:         envString("STORAGE_DRIVER", "s3"),
		S3Region:              envString("S3_REGION", "us-east-1"),
		S3Bucket:              envString("S3_BUCKET", "filetool"),
		S3AccessKey:           envString("S3_ACCESS_KEY", ""),
		S3SecretKey:           envString("S3_SECRET_KEY", ""),
		S3Endpoint:            envString("S3_ENDPOINT", ""),
		S3PresignExpiryPublic: envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour),

		RateLimitAuth:   envInt("RATE_LIMIT_AUTH", 10),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		TrustProxyHeaders: envBool("TRUST_PROXY_HEADERS", false),
	}

	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		slog.Error("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
		os.Exit(1)
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	// Development only: derive a reset secret so local setups need one key less.
	if cfg.ResetTokenSecret == "" {
		cfg.ResetTokenSecret = cfg.AccessTokenSecret + ":password-reset"
	}

	return cfg
}

// LoadDatabase reads only the database settings. Used by maintenance commands
// that never talk to the vendor or send mail.
func LoadDatabase() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:       envString("APP_ENV", "development"),
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/filetool.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
	}
}

// validateProduction ensures all required services are configured for production deployments.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.ResetTokenSecret == "" {
		slog.Error("production deployment requires RESET_TOKEN_SECRET")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and credentials are excluded, so the result is safe to log.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:             c.AppName,
		AppEnv:              c.AppEnv,
		AppURL:              c.AppURL,
		FrontendURL:         c.FrontendURL,
		Port:                c.Port,
		DBDriver:            c.DBDriver,
		AccessTokenTTL:      c.AccessTokenTTL,
		RefreshTokenTTL:     c.RefreshTokenTTL,
		RefreshRotation:     c.RefreshRotation,
		CloudConvertSandbox: c.CloudConvertSandbox,
		UploadMaxFiles:      c.UploadMaxFiles,
		UploadMaxFileSize:   c.UploadMaxFileSize,
		EmailFrom:           c.EmailFrom,
		MetricsEnabled:      c.MetricsEnabled,
		StorageDriver:       c.StorageDriver,
		S3Bucket:            c.S3Bucket,
		S3Endpoint:          c.S3Endpoint,
		TrustProxyHeaders:   c.TrustProxyHeaders,
	}
}
