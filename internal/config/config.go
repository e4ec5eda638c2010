package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type ServerConfig struct {
	Port int    `yaml:"port"`
	Env  string `yaml:"env"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	VerifyTokenTTL time.Duration `yaml:"verify_token_ttl"`
	ResetTokenTTL  time.Duration `yaml:"reset_token_ttl"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
}

type AppConfig struct {
	// Domain is the public base URL used to build links in emails.
	Domain string `yaml:"domain"`
}

type LogConfig struct {
	SentryDSN string `yaml:"sentry_dsn"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Email     EmailConfig     `yaml:"email"`
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// LoadConfig reads the YAML file at path (a missing file is not an error),
// applies .env and environment overrides, fills defaults and validates.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("[config] no .env file found, using environment variables")
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		slog.Info("[config] config file not found, using defaults and environment", "path", path)
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	envString(&cfg.Server.Env, "APP_ENV")
	envInt(&cfg.Server.Port, "PORT")
	envString(&cfg.Database.Driver, "DATABASE_DRIVER")
	envString(&cfg.Database.DSN, "DATABASE_URL")
	envString(&cfg.Auth.JWTSecret, "ACCESS_TOKEN")
	envString(&cfg.Email.SMTPHost, "SMTP_HOST")
	envInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	envString(&cfg.Email.SMTPUser, "SMTP_USER")
	envString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	envString(&cfg.Email.FromEmail, "EMAIL_FROM")
	envString(&cfg.App.Domain, "DOMAIN")
	envString(&cfg.Log.SentryDSN, "SENTRY_DSN")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 24 * time.Hour
	}
	if cfg.Auth.VerifyTokenTTL == 0 {
		cfg.Auth.VerifyTokenTTL = 24 * time.Hour
	}
	if cfg.Auth.ResetTokenTTL == 0 {
		cfg.Auth.ResetTokenTTL = time.Hour
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.FromEmail == "" {
		cfg.Email.FromEmail = "no-reply@localhost"
	}
	if cfg.App.Domain == "" {
		cfg.App.Domain = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.RateLimit.RPS == 0 {
		cfg.RateLimit.RPS = 1
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (ACCESS_TOKEN) is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.url (DATABASE_URL) is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("[config] invalid int, keeping file value", "key", key, "value", v)
		return
	}
	*dst = n
}
