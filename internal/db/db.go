// Package db opens the GORM connection, applies the schema and seeds
// development data.
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/invoice-wemaad/internal/config"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(NormalizeDSN(cfg.DSN())), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}
}

func gormLogger(log *zap.Logger, debug bool) logger.Interface {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// Open connects to the configured database, retrying while it comes up.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	gcfg := &gorm.Config{Logger: gormLogger(log, cfg.Debug)}

	var conn *gorm.DB
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		conn, err = gorm.Open(d, gcfg)
		if err == nil {
			err = conn.Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.Warn("database not ready", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < connectAttempts {
			time.Sleep(connectBackoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("db: connect after %d attempts: %w", connectAttempts, err)
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(cfg.DSN())))
	return conn, nil
}
