package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/internal/services"
)

type DashboardHandler struct {
	invoices *services.InvoiceService
	profiles *services.ProfileService
	log      *zap.Logger
}

func NewDashboardHandler(invoices *services.InvoiceService, profiles *services.ProfileService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{invoices: invoices, profiles: profiles, log: log}
}

// Show returns the owner's counts, paid/pending revenue, the most recent
// invoices and the daily paid revenue of the last 30 days.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		logFailure(h.log, r, "dashboard user", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	sum, err := h.invoices.Summary(r.Context(), userID)
	if err != nil {
		logFailure(h.log, r, "dashboard summary", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	recent, err := h.invoices.Recent(r.Context(), userID)
	if err != nil {
		logFailure(h.log, r, "dashboard recent", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	revenue, err := h.invoices.RevenueSeries(r.Context(), userID)
	if err != nil {
		logFailure(h.log, r, "dashboard revenue", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"onboarded": user.Onboarded,
		"summary":   sum,
		"recent":    recent,
		"revenue":   revenue,
	})
}
