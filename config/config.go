// Package config loads service configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultShutdownTimeout     = 10 * time.Second
	defaultReadinessDrainDelay = 0
)

// Config is the full service configuration.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
	Auth      AuthConfig
	UI        UIConfig
	Database  DatabaseConfig
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name    string `env:"SERVICE_NAME" envDefault:"webui-auth-gate"`
	Version string `env:"SERVICE_VERSION" envDefault:"dev"`
	Env     string `env:"ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"8080"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// TracingConfig controls the OTLP trace exporter.
type TracingConfig struct {
	Enabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	Endpoint   string  `env:"OTEL_COLLECTOR_ENDPOINT" envDefault:"localhost:4318"`
	SampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"0.1"`
}

// ProfilingConfig controls continuous profiling.
type ProfilingConfig struct {
	Enabled  bool   `env:"PROFILING_ENABLED" envDefault:"false"`
	Endpoint string `env:"PYROSCOPE_ENDPOINT" envDefault:"http://localhost:4040"`
}

// ShutdownConfig controls graceful shutdown.
type ShutdownConfig struct {
	Timeout             time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadinessDrainDelay time.Duration `env:"READINESS_DRAIN_DELAY" envDefault:"0s"`
}

// AuthConfig configures sessions, the gate and the credential table.
type AuthConfig struct {
	// AppName prefixes the session cookie: <AppName>_session_id.
	AppName       string        `env:"AUTH_APP_NAME" envDefault:"webui"`
	SessionTTL    time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`
	SweepInterval time.Duration `env:"AUTH_SWEEP_INTERVAL" envDefault:"10m"`
	CookieSecure  bool          `env:"AUTH_COOKIE_SECURE" envDefault:"false"`

	LoginPath     string   `env:"AUTH_LOGIN_PATH" envDefault:"/login"`
	LogoutPath    string   `env:"AUTH_LOGOUT_PATH" envDefault:"/logout"`
	StaticPrefix  string   `env:"AUTH_STATIC_PREFIX" envDefault:"/static/"`
	RawFilePrefix string   `env:"AUTH_RAW_FILE_PREFIX" envDefault:"/file="`
	PublicPaths   []string `env:"AUTH_PUBLIC_PATHS" envDefault:"/health,/ready,/metrics" envSeparator:","`

	Digest            string `env:"AUTH_DIGEST" envDefault:"sha256"`
	CredentialsSource string `env:"CREDENTIALS_SOURCE" envDefault:"file"`
	CredentialsFile   string `env:"CREDENTIALS_FILE" envDefault:"credentials.yaml"`
}

// UIConfig selects what the gate protects.
type UIConfig struct {
	// UpstreamURL, when set, reverse-proxies gated requests to a running UI.
	UpstreamURL string `env:"UI_UPSTREAM_URL"`
	// Dir is served as a single-page app when UpstreamURL is empty.
	Dir string `env:"UI_DIR" envDefault:"./web"`
}

// DatabaseConfig is used when CREDENTIALS_SOURCE=postgres.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL"`
}

// Load reads .env (if any) and the environment. It panics on malformed values,
// which only happens at startup.
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		panic("Configuration load failed: " + err.Error())
	}
	return cfg
}

// Parse reads .env (if any) and the environment.
func Parse() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Auth.AppName == "" {
		errs = append(errs, errors.New("AUTH_APP_NAME must not be empty"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("AUTH_SESSION_TTL must be positive"))
	}
	if !strings.HasPrefix(c.Auth.LoginPath, "/") {
		errs = append(errs, fmt.Errorf("AUTH_LOGIN_PATH %q must start with /", c.Auth.LoginPath))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE %v must be within [0,1]", c.Tracing.SampleRate))
	}

	switch c.Auth.CredentialsSource {
	case "file":
		if c.Auth.CredentialsFile == "" {
			errs = append(errs, errors.New("CREDENTIALS_FILE is required when CREDENTIALS_SOURCE=file"))
		}
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when CREDENTIALS_SOURCE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("CREDENTIALS_SOURCE %q must be file or postgres", c.Auth.CredentialsSource))
	}

	switch strings.ToLower(c.Auth.Digest) {
	case "sha256", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("AUTH_DIGEST %q must be sha256 or bcrypt", c.Auth.Digest))
	}

	if c.UI.UpstreamURL != "" {
		if u, err := url.Parse(c.UI.UpstreamURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("UI_UPSTREAM_URL %q must be an absolute URL", c.UI.UpstreamURL))
		}
	}

	return errors.Join(errs...)
}

// SessionCookieName returns <app>_session_id.
func (c *Config) SessionCookieName() string {
	return c.Auth.AppName + "_session_id"
}

// GetShutdownTimeoutDuration returns the HTTP shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	if c.Shutdown.Timeout <= 0 {
		return defaultShutdownTimeout
	}
	return c.Shutdown.Timeout
}

// GetReadinessDrainDelayDuration returns how long /ready reports 503 before shutdown.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	if c.Shutdown.ReadinessDrainDelay < 0 {
		return defaultReadinessDrainDelay
	}
	return c.Shutdown.ReadinessDrainDelay
}
