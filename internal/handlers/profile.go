package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/i18n"
	"github.com/diewo77/invoice-wemaad/internal/services"
	"github.com/diewo77/invoice-wemaad/validation"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	log      *zap.Logger
}

func NewProfileHandler(profiles *services.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

// Onboard records the first-run name and address.
func (h *ProfileHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := decode(w, r)
	if !ok {
		return
	}
	in, v := validation.Unwrap(validation.ParseOnboarding(p))
	if v != nil {
		invalid(w, r, v)
		return
	}
	_, err := h.profiles.Onboard(r.Context(), userID, in)
	if errors.Is(err, services.ErrNotFound) {
		fail(w, r, http.StatusNotFound, "user_not_found")
		return
	}
	if err != nil {
		logFailure(h.log, r, "onboard user", err, zap.Uint("user_id", userID))
		fail(w, r, http.StatusInternalServerError, "failed_update_profile")
		return
	}
	done(w, r, "/dashboard")
}

func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	u, err := h.profiles.Get(r.Context(), userID)
	if errors.Is(err, services.ErrNotFound) {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lang(r), "user_not_found"))
		return
	}
	if err != nil {
		logFailure(h.log, r, "get profile", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// Update replaces the personal, company and bank details.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := decode(w, r)
	if !ok {
		return
	}
	in, v := validation.Unwrap(validation.ParseOnboarding(p))
	if v != nil {
		invalid(w, r, v)
		return
	}
	if _, err := h.profiles.Update(r.Context(), userID, in); err != nil {
		logFailure(h.log, r, "update profile", err, zap.Uint("user_id", userID))
		fail(w, r, http.StatusInternalServerError, "failed_update_profile")
		return
	}
	done(w, r, "/profile")
}
