package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/auth"
	"github.com/diewo77/invoice-wemaad/internal/config"
	"github.com/diewo77/invoice-wemaad/internal/db"
	"github.com/diewo77/invoice-wemaad/internal/logging"
	"github.com/diewo77/invoice-wemaad/internal/mailer"
	"github.com/diewo77/invoice-wemaad/internal/pdf"
	"github.com/diewo77/invoice-wemaad/internal/services"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logging.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.App.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.App.SentryDSN, Environment: cfg.App.Env}); err != nil {
			log.Warn("sentry disabled", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if *migrateOnlyFlag {
		cfg.App.Migrations = true
		if err := db.Migrate(conn, cfg, log); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(conn); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		log.Info("seeding completed")
		return
	}

	if err := db.Migrate(conn, cfg, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if cfg.App.Seed {
		if err := db.Seed(conn); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
	}

	auth.SetSecret(cfg.App.SessionSecret)
	accounts := services.NewAccountService(conn)
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		ok, err := accounts.UserExists(ctx, uid)
		return err == nil && ok
	})

	mail := mailer.New(newTransport(cfg.Mail, cfg.App, log), log)
	app := NewApp(Deps{
		DB:       conn,
		Config:   cfg,
		Log:      log,
		Mail:     mail,
		Renderer: pdf.NewRenderer(pdf.NewHTTPImageFetcher(10*time.Second), log),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	// Pending notifications finish before the process exits.
	mail.Wait()
	closeDB(conn, log)
	log.Info("server stopped gracefully")
}

// newTransport picks the outbound email transport. In development an smtp
// transport without a host falls back to logging.
func newTransport(mc config.MailConfig, ac config.AppConfig, log *zap.Logger) mailer.Transport {
	switch mc.Transport {
	case "sendgrid":
		return mailer.NewSendGridTransport(mc.SendGridAPIKey, mc.From, mc.FromName)
	case "log":
		return mailer.NewLogTransport(log)
	}
	if mc.Host == "" && ac.IsDevelopment() {
		log.Warn("EMAIL_SERVER_HOST not set, emails will be logged")
		return mailer.NewLogTransport(log)
	}
	return mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host:     mc.Host,
		Port:     mc.Port,
		User:     mc.User,
		Password: mc.Password,
		From:     mc.From,
		FromName: mc.FromName,
	})
}

func closeDB(conn *gorm.DB, log *zap.Logger) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("closing database", zap.Error(err))
	}
}
