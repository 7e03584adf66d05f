package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported fulfillment provider backends.
const (
	ProviderPaySeller = "payseller"
	ProviderG2Bulk    = "g2bulk"
)

// Supported token strategies.
const (
	AuthStrategyJWT  = "jwt"
	AuthStrategyHMAC = "hmac"
)

// ProviderConfig is handed to the provider gateway at construction time.
type ProviderConfig struct {
	Kind        string
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	RateLimit   float64
	CallbackURL string
}

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	Provider          ProviderConfig
	JWTSecret         string
	AuthStrategy      string
	ReconcileInterval time.Duration
	WorkerPoolSize    int
	ReconcileBatch    int
	ShutdownTimeout   time.Duration
	CallbackRateLimit float64
	CORSOrigins       []string
	LogLevel          string
}

const (
	defaultRunAddress        = ":8080"
	defaultJWTSecret         = "change-me-in-production"
	defaultProviderKind      = ProviderG2Bulk
	defaultG2BulkBaseURL     = "https://api.g2bulk.com/v1/"
	defaultProviderTimeout   = 15 * time.Second
	defaultProviderRateLimit = 10
	defaultReconcileInterval = time.Minute
	defaultWorkerPoolSize    = 4
	defaultReconcileBatch    = 100
	defaultShutdownTimeout   = 10 * time.Second
	defaultCallbackRateLimit = 5
	defaultLogLevel          = "info"
	defaultEnvFile           = ".env"
)

// Load parses configuration from flags, environment variables and an optional .env file.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	lookup, err := withEnvFile(lookup)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RunAddress:  getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI: getString(lookup, "DATABASE_URI", ""),
		Provider: ProviderConfig{
			Kind:        strings.ToLower(getString(lookup, "PROVIDER_KIND", defaultProviderKind)),
			BaseURL:     getString(lookup, "PROVIDER_BASE_URL", ""),
			APIKey:      getString(lookup, "PROVIDER_API_KEY", ""),
			Timeout:     getDuration(lookup, "PROVIDER_TIMEOUT", defaultProviderTimeout),
			RateLimit:   getFloat(lookup, "PROVIDER_RATE_LIMIT", defaultProviderRateLimit),
			CallbackURL: getString(lookup, "CALLBACK_URL", ""),
		},
		JWTSecret:         getString(lookup, "JWT_SECRET", defaultJWTSecret),
		AuthStrategy:      strings.ToLower(getString(lookup, "AUTH_STRATEGY", AuthStrategyJWT)),
		ReconcileInterval: getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ReconcileBatch:    getInt(lookup, "RECONCILE_BATCH_SIZE", defaultReconcileBatch),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		CallbackRateLimit: getFloat(lookup, "CALLBACK_RATE_LIMIT", defaultCallbackRateLimit),
		CORSOrigins:       splitCSV(getString(lookup, "CORS_ORIGINS", "")),
		LogLevel:          getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	flags := flag.NewFlagSet("topupshop", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		intervalStr        = cfg.ReconcileInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		providerTimeoutStr = cfg.Provider.Timeout.String()
	)

	flags.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	flags.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	flags.StringVar(&cfg.Provider.Kind, "provider", cfg.Provider.Kind, "Fulfillment provider: payseller or g2bulk")
	flags.StringVar(&cfg.Provider.BaseURL, "provider-url", cfg.Provider.BaseURL, "Fulfillment provider base URL")
	flags.StringVar(&providerTimeoutStr, "provider-timeout", providerTimeoutStr, "Timeout of a single provider call")
	flags.StringVar(&cfg.Provider.CallbackURL, "callback-url", cfg.Provider.CallbackURL, "Public URL of the provider callback endpoint")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	flags.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconcile workers")
	flags.StringVar(&intervalStr, "reconcile-interval", intervalStr, "Interval between reconciliation scans")
	flags.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	flags.IntVar(&cfg.ReconcileBatch, "reconcile-batch", cfg.ReconcileBatch, "Maximum orders per reconciliation scan")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.ReconcileInterval, err = time.ParseDuration(intervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.Provider.Timeout, err = time.ParseDuration(providerTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid provider timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	normalize(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = defaultReconcileBatch
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.Provider.Timeout <= 0 {
		cfg.Provider.Timeout = defaultProviderTimeout
	}

	if cfg.Provider.Kind == ProviderG2Bulk && cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = defaultG2BulkBaseURL
	}
}

func validate(cfg *Config) error {
	if cfg.DatabaseURI == "" {
		return fmt.Errorf("database URI must be provided")
	}

	switch cfg.Provider.Kind {
	case ProviderPaySeller, ProviderG2Bulk:
	default:
		return fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}

	if cfg.Provider.BaseURL == "" {
		return fmt.Errorf("provider base URL must be provided for %s", cfg.Provider.Kind)
	}

	if cfg.Provider.APIKey == "" {
		return fmt.Errorf("provider API key must be provided")
	}

	switch cfg.AuthStrategy {
	case AuthStrategyJWT, AuthStrategyHMAC:
	default:
		return fmt.Errorf("unknown auth strategy %q", cfg.AuthStrategy)
	}

	return nil
}

// withEnvFile layers values from ENV_FILE (default .env) under the real environment.
func withEnvFile(lookup envLookup) (envLookup, error) {
	path := getString(lookup, "ENV_FILE", defaultEnvFile)
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lookup, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
