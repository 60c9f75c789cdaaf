package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/auth"
	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/internal/config"
	"github.com/diewo77/invoice-wemaad/internal/handlers"
	"github.com/diewo77/invoice-wemaad/internal/middleware"
	"github.com/diewo77/invoice-wemaad/internal/pdf"
	"github.com/diewo77/invoice-wemaad/internal/services"
)

// Deps is everything the application needs from main.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *zap.Logger
	Mail     handlers.Mailer
	Renderer *pdf.Renderer
}

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	db      *gorm.DB
	log     *zap.Logger
	handler http.Handler

	invoices  *handlers.InvoiceHandler
	clients   *handlers.ClientHandler
	profiles  *handlers.ProfileHandler
	accounts  *handlers.AuthHandler
	contact   *handlers.ContactHandler
	documents *handlers.DocumentHandler
	dashboard *handlers.DashboardHandler
}

// NewApp creates a new application with all routes configured.
func NewApp(d Deps) *App {
	invoiceSvc := services.NewInvoiceService(d.DB)
	profileSvc := services.NewProfileService(d.DB)
	baseURL := d.Config.App.BaseURL

	app := &App{
		mux:       http.NewServeMux(),
		db:        d.DB,
		log:       d.Log,
		invoices:  handlers.NewInvoiceHandler(invoiceSvc, d.Mail, d.Log, baseURL),
		clients:   handlers.NewClientHandler(services.NewClientService(d.DB), d.Log),
		profiles:  handlers.NewProfileHandler(profileSvc, d.Log),
		accounts:  handlers.NewAuthHandler(services.NewAccountService(d.DB), d.Mail, d.Log, baseURL),
		contact:   handlers.NewContactHandler(d.Mail, d.Log, d.Config.Mail.ContactTo),
		documents: handlers.NewDocumentHandler(invoiceSvc, d.Renderer, d.Log),
		dashboard: handlers.NewDashboardHandler(invoiceSvc, profileSvc, d.Log),
	}
	app.setupRoutes()

	// Outermost first: panics are caught after the request has been logged.
	app.handler = middleware.Recover(d.Log)(
		middleware.Logging(d.Log)(
			auth.Middleware(
				middleware.Preferences(app.mux))))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("GET /{$}", a.index)

	a.mux.HandleFunc("POST /login", a.accounts.Login)
	a.mux.HandleFunc("GET /auth/verify", a.accounts.Verify)
	a.mux.HandleFunc("POST /logout", a.accounts.Logout)
	a.mux.HandleFunc("POST /contact", a.contact.Submit)
	a.mux.HandleFunc("GET /api/invoice/{publicId}", a.documents.Public)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes (each handler resolves the session user)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("POST /onboarding", a.profiles.Onboard)
	a.mux.HandleFunc("GET /profile", a.profiles.View)
	a.mux.HandleFunc("POST /profile", a.profiles.Update)
	a.mux.HandleFunc("GET /dashboard", a.dashboard.Show)

	// Invoices
	a.mux.HandleFunc("GET /invoices", a.invoices.List)
	a.mux.HandleFunc("POST /invoices", a.invoices.Create)
	a.mux.HandleFunc("GET /invoices/{id}", a.invoices.View)
	a.mux.HandleFunc("POST /invoices/{id}", a.invoices.Update)
	a.mux.HandleFunc("POST /invoices/{id}/delete", a.invoices.Delete)
	a.mux.HandleFunc("POST /invoices/{id}/paid", a.invoices.MarkPaid)
	a.mux.HandleFunc("GET /invoices/{id}/pdf", a.documents.Download)
	a.mux.HandleFunc("POST /api/email/{invoiceId}", a.invoices.Remind)

	// Clients
	a.mux.HandleFunc("GET /clients", a.clients.List)
	a.mux.HandleFunc("POST /clients", a.clients.Create)
	a.mux.HandleFunc("GET /clients/{id}", a.clients.View)
	a.mux.HandleFunc("POST /clients/{id}", a.clients.Update)
	a.mux.HandleFunc("POST /clients/{id}/delete", a.clients.Delete)
}

// ─────────────────────────────────────────────────────────────────────────────
// Page handlers
// ─────────────────────────────────────────────────────────────────────────────

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	_, signedIn := auth.UserIDFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"name":     "InvoiceWeMaAd",
		"signedIn": signedIn,
		"lang":     middleware.LangFrom(r.Context()),
	})
}
