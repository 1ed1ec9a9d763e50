// Package config loads eventdesk settings from an optional YAML file, a .env
// file and environment variables, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Media     MediaConfig     `yaml:"media"`
	Email     EmailConfig     `yaml:"email"`
	Log       LogConfig       `yaml:"log"`
	Client    ClientConfig    `yaml:"client"`
}

type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	ReadTimeoutSeconds int      `yaml:"read_timeout_seconds"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	SecureCookies      bool     `yaml:"secure_cookies"`
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	// Driver is "sqlite3" or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

type RedisConfig struct {
	// URL enables the Redis rate limiter, e.g. redis://localhost:6379/0.
	URL string `yaml:"url"`
}

type RateLimitConfig struct {
	SubmitLimit   int `yaml:"submit_limit"`
	WindowSeconds int `yaml:"window_seconds"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

type MediaConfig struct {
	// Backend is "local" or "s3".
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	PublicURL   string `yaml:"public_url"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

type EmailConfig struct {
	// Backend is "log" or "ses".
	Backend   string `yaml:"backend"`
	From      string `yaml:"from"`
	SESRegion string `yaml:"ses_region"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	AddSource bool   `yaml:"add_source"`
	// GELFAddr is host:port of a Graylog UDP input; empty disables it.
	GELFAddr string `yaml:"gelf_addr"`
}

type ClientConfig struct {
	BaseURL        string `yaml:"base_url"`
	SiteURL        string `yaml:"site_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retries        int    `yaml:"retries"`
	// DashboardSource is "remote" or "fixtures".
	DashboardSource string `yaml:"dashboard_source"`
	SessionFile     string `yaml:"session_file"`
}

func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":8080", ReadTimeoutSeconds: 15, AllowedOrigins: []string{"*"}},
		Database:  DatabaseConfig{Driver: "sqlite3", DSN: "file:eventdesk.db?_foreign_keys=on"},
		Auth:      AuthConfig{JWTSecret: "eventdesk-dev-secret-change-me", TokenTTLHours: 24, AdminEmail: "admin@thenextevent.com", AdminPassword: "admin123"},
		RateLimit: RateLimitConfig{SubmitLimit: 10, WindowSeconds: 60},
		Media:     MediaConfig{Backend: "local", Dir: "uploads", PublicURL: "/uploads", MaxUploadMB: 10},
		Email:     EmailConfig{Backend: "log", From: "no-reply@thenextevent.com", SESRegion: "me-central-1"},
		Log:       LogConfig{Level: "info"},
		Client:    ClientConfig{BaseURL: "http://localhost:8080/api", SiteURL: "http://localhost:3000", TimeoutSeconds: 30, Retries: 3, DashboardSource: "remote"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads path, then applies .env and environment overrides.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = getEnv("EVENTDESK_ADDR", cfg.Server.Addr)
	cfg.Server.SecureCookies = getEnv("EVENTDESK_SECURE_COOKIES", strconv.FormatBool(cfg.Server.SecureCookies)) == "true"
	if origins := os.Getenv("EVENTDESK_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	cfg.Database.Driver = getEnv("EVENTDESK_DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("EVENTDESK_DB_DSN", cfg.Database.DSN)
	cfg.Auth.JWTSecret = getEnv("EVENTDESK_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTLHours = getEnvInt("EVENTDESK_TOKEN_TTL_HOURS", cfg.Auth.TokenTTLHours)
	cfg.Auth.AdminEmail = getEnv("EVENTDESK_ADMIN_EMAIL", cfg.Auth.AdminEmail)
	cfg.Auth.AdminPassword = getEnv("EVENTDESK_ADMIN_PASS", cfg.Auth.AdminPassword)
	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)
	cfg.RateLimit.SubmitLimit = getEnvInt("EVENTDESK_SUBMIT_LIMIT", cfg.RateLimit.SubmitLimit)
	cfg.Media.Backend = getEnv("EVENTDESK_MEDIA_BACKEND", cfg.Media.Backend)
	cfg.Media.Dir = getEnv("EVENTDESK_MEDIA_DIR", cfg.Media.Dir)
	cfg.Media.S3Bucket = getEnv("EVENTDESK_S3_BUCKET", cfg.Media.S3Bucket)
	cfg.Media.S3Region = getEnv("AWS_REGION", cfg.Media.S3Region)
	cfg.Email.Backend = getEnv("EVENTDESK_EMAIL_BACKEND", cfg.Email.Backend)
	cfg.Email.From = getEnv("EVENTDESK_EMAIL_FROM", cfg.Email.From)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.AddSource = getEnv("LOG_ADD_SOURCE", strconv.FormatBool(cfg.Log.AddSource)) == "true"
	cfg.Log.GELFAddr = getEnv("GELF_ADDR", cfg.Log.GELFAddr)
	cfg.Client.BaseURL = getEnv("EVENTDESK_API_URL", cfg.Client.BaseURL)
	cfg.Client.TimeoutSeconds = getEnvInt("EVENTDESK_TIMEOUT_SECONDS", cfg.Client.TimeoutSeconds)
	cfg.Client.DashboardSource = getEnv("EVENTDESK_DASHBOARD_SOURCE", cfg.Client.DashboardSource)
	cfg.Client.SessionFile = getEnv("EVENTDESK_SESSION_FILE", cfg.Client.SessionFile)
	return cfg, nil
}

// Validate reports settings that would fail at startup.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite3 or postgres, got %q", c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.TokenTTLHours <= 0 {
		errs = append(errs, errors.New("auth.token_ttl_hours must be positive"))
	}
	switch c.Media.Backend {
	case "local":
	case "s3":
		if c.Media.S3Bucket == "" {
			errs = append(errs, errors.New("media.s3_bucket is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("media.backend must be local or s3, got %q", c.Media.Backend))
	}
	switch c.Email.Backend {
	case "log", "ses":
	default:
		errs = append(errs, fmt.Errorf("email.backend must be log or ses, got %q", c.Email.Backend))
	}
	switch c.Client.DashboardSource {
	case "remote", "fixtures":
	default:
		errs = append(errs, fmt.Errorf("client.dashboard_source must be remote or fixtures, got %q", c.Client.DashboardSource))
	}
	if c.RateLimit.SubmitLimit < 0 || c.RateLimit.WindowSeconds <= 0 {
		errs = append(errs, errors.New("rate_limit needs a non-negative limit and a positive window"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
