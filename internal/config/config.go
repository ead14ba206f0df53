// Package config loads solarquote settings from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "SOLARQUOTE_CONFIG"

type Config struct {
	HTTP     HTTP    `yaml:"http"`
	Log      Log     `yaml:"log"`
	DB       DB      `yaml:"db"`
	Catalog  Catalog `yaml:"catalog"`
	Currency string  `yaml:"currency"`
	Janitor  Janitor `yaml:"janitor"`
	Alert    Alert   `yaml:"alert"`
	Email    Email   `yaml:"email"`
}

type HTTP struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Log struct {
	Level string `yaml:"level"`
}

type DB struct {
	// Driver is one of memory, sqlite, postgres.
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type Catalog struct {
	File string `yaml:"file"`
}

type Janitor struct {
	Enabled bool `yaml:"enabled"`
	// Schedule is integer seconds or a standard cron expression.
	Schedule  string        `yaml:"schedule"`
	Retention time.Duration `yaml:"retention"`
}

type Alert struct {
	WebhookURL  string `yaml:"webhook_url"`
	WebhookType string `yaml:"webhook_type"`
}

type Email struct {
	// Provider is smtp or sendgrid; empty disables email.
	Provider     string `yaml:"provider"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Encryption   string `yaml:"encryption"`
	FromAddress  string `yaml:"from_address"`
	FromName     string `yaml:"from_name"`
	APIKey       string `yaml:"api_key"`
	SalesAddress string `yaml:"sales_address"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:            ":8000",
			ShutdownTimeout: 10 * time.Second,
		},
		Log:      Log{Level: "info"},
		DB:       DB{Driver: "memory", AutoMigrate: true},
		Currency: "PKR",
		Janitor: Janitor{
			Enabled:   true,
			Schedule:  "3600",
			Retention: 30 * 24 * time.Hour,
		},
		Email: Email{Port: 587, FromName: "Solar Quotes"},
	}
}

// Load reads a .env file if present, then the YAML file at path (or
// $SOLARQUOTE_CONFIG when path is empty), then applies environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// FromEnv builds a Config from defaults and environment variables only.
func FromEnv() Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.HTTP.Addr, "SOLARQUOTE_HTTP_ADDR")
	if port := os.Getenv("PORT"); port != "" {
		c.HTTP.Addr = ":" + port
	}
	str(&c.Log.Level, "LOG_LEVEL", "SOLARQUOTE_LOG_LEVEL")

	str(&c.DB.Driver, "SOLARQUOTE_DB_DRIVER")
	str(&c.DB.DSN, "SOLARQUOTE_DB_DSN", "DATABASE_URL")
	if v, ok := boolEnv("SOLARQUOTE_DB_AUTO_MIGRATE"); ok {
		c.DB.AutoMigrate = v
	}

	str(&c.Catalog.File, "SOLARQUOTE_CATALOG_FILE")
	str(&c.Currency, "SOLARQUOTE_CURRENCY")
	c.Currency = strings.ToUpper(c.Currency)

	if v, ok := boolEnv("SOLARQUOTE_JANITOR_ENABLED"); ok {
		c.Janitor.Enabled = v
	}
	str(&c.Janitor.Schedule, "SOLARQUOTE_JANITOR_SCHEDULE")
	if raw := os.Getenv("SOLARQUOTE_JANITOR_RETENTION"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			c.Janitor.Retention = d
		}
	}

	str(&c.Alert.WebhookURL, "SOLARQUOTE_ALERT_WEBHOOK_URL", "ALERT_WEBHOOK_URL")
	str(&c.Alert.WebhookType, "SOLARQUOTE_ALERT_WEBHOOK_TYPE", "ALERT_WEBHOOK_TYPE")

	str(&c.Email.Provider, "SOLARQUOTE_EMAIL_PROVIDER")
	str(&c.Email.Host, "SOLARQUOTE_SMTP_HOST")
	if raw := os.Getenv("SOLARQUOTE_SMTP_PORT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			c.Email.Port = n
		}
	}
	str(&c.Email.Username, "SOLARQUOTE_SMTP_USERNAME")
	str(&c.Email.Password, "SOLARQUOTE_SMTP_PASSWORD")
	str(&c.Email.Encryption, "SOLARQUOTE_SMTP_ENCRYPTION")
	str(&c.Email.FromAddress, "SOLARQUOTE_EMAIL_FROM")
	str(&c.Email.APIKey, "SENDGRID_API_KEY", "SOLARQUOTE_SENDGRID_API_KEY")
	str(&c.Email.SalesAddress, "SOLARQUOTE_SALES_EMAIL")
}

func boolEnv(key string) (bool, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
