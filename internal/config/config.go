// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Mail     MailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite";
// RawDSN, when set, wins over the individual parts.
type DatabaseConfig struct {
	Driver   string
	RawDSN   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env           string
	LogLevel      string
	BaseURL       string
	Migrations    bool
	Seed          bool
	SessionSecret string
	SentryDSN     string
}

// MailConfig selects and configures the outbound email transport.
type MailConfig struct {
	Transport      string // smtp, sendgrid or log
	Host           string
	Port           int
	User           string
	Password       string
	From           string
	FromName       string
	SendGridAPIKey string
	ContactTo      string
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.RawDSN != "" {
		return d.RawDSN
	}
	if d.Driver == "sqlite" {
		return d.DBName
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// IsDevelopment reports whether the app runs with development defaults.
func (a AppConfig) IsDevelopment() bool { return a.Env == "development" }

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			RawDSN:   strings.Trim(strings.TrimSpace(os.Getenv("DATABASE_DSN")), `"'`),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "invoices"),
			Password: getEnv("DB_PASSWORD", "invoices123"),
			DBName:   getEnv("DB_NAME", "invoices"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Env:           getEnv("APP_ENV", "development"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			BaseURL:       strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
			Migrations:    getEnvBool("MIGRATIONS", false),
			Seed:          getEnvBool("DB_SEED", false),
			SessionSecret: getEnv("SESSION_SECRET", "devsessionsecret"),
			SentryDSN:     os.Getenv("SENTRY_DSN"),
		},
		Mail: MailConfig{
			Transport:      strings.ToLower(getEnv("EMAIL_TRANSPORT", "smtp")),
			Host:           os.Getenv("EMAIL_SERVER_HOST"),
			Port:           getEnvInt("EMAIL_SERVER_PORT", 465),
			User:           os.Getenv("EMAIL_SERVER_USER"),
			Password:       os.Getenv("EMAIL_SERVER_PASSWORD"),
			From:           getEnv("EMAIL_FROM", "noreply@wemaad.com"),
			FromName:       getEnv("EMAIL_FROM_NAME", "InvoiceWeMaAd"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			ContactTo:      getEnv("CONTACT_EMAIL", "hello@wemaad.com"),
		},
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		result = multierror.Append(result, fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver))
	}
	if _, err := url.ParseRequestURI(c.App.BaseURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("BASE_URL is not a valid URL: %w", err))
	}
	switch c.Mail.Transport {
	case "smtp":
		if c.Mail.Host == "" && !c.App.IsDevelopment() {
			result = multierror.Append(result, errors.New("EMAIL_SERVER_HOST is required for the smtp transport"))
		}
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" {
			result = multierror.Append(result, errors.New("SENDGRID_API_KEY is required for the sendgrid transport"))
		}
	case "log":
	default:
		result = multierror.Append(result, fmt.Errorf("EMAIL_TRANSPORT %q is not supported", c.Mail.Transport))
	}
	if c.Mail.From == "" {
		result = multierror.Append(result, errors.New("EMAIL_FROM is required"))
	}
	if !c.App.IsDevelopment() && c.App.SessionSecret == "devsessionsecret" {
		result = multierror.Append(result, errors.New("SESSION_SECRET must be set outside development"))
	}
	return result.ErrorOrNil()
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
