package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/internal/config"
	"github.com/diewo77/invoice-wemaad/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// coreTables must exist once the schema is applied.
var coreTables = []string{"users", "clients", "invoices"}

// Migrate applies the schema. Postgres databases with MIGRATIONS enabled run
// the embedded SQL migrations; everything else uses AutoMigrate.
func Migrate(conn *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		log.Info("running sql migrations")
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(cfg.Database.DSN()))); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	} else {
		if err := AutoMigrate(conn); err != nil {
			return err
		}
	}
	for _, table := range coreTables {
		if !conn.Migrator().HasTable(table) {
			return fmt.Errorf("missing table after migration: %s", table)
		}
	}
	return nil
}

// AutoMigrate creates or updates every model's table.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func runSQLMigrations(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
