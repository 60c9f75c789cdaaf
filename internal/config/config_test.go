package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BASE_URL", "https://invoices.example.com/")
	t.Setenv("EMAIL_SERVER_PORT", "587")
	t.Setenv("MIGRATIONS", "yes")
	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://invoices.example.com", cfg.App.BaseURL)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.True(t, cfg.App.Migrations)
	assert.Equal(t, "hello@wemaad.com", cfg.Mail.ContactTo)
	assert.Equal(t, "InvoiceWeMaAd", cfg.Mail.FromName)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=inv sslmode=disable", d.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/inv?sslmode=disable", d.URL())

	d.RawDSN = "postgres://x"
	assert.Equal(t, "postgres://x", d.DSN())
}

func TestValidateAggregatesErrors(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("EMAIL_TRANSPORT", "sendgrid")
	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "SENDGRID_API_KEY")
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidateDevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	assert.NoError(t, Load().Validate())
}
