package handlers

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/auth"
	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/i18n"
	"github.com/diewo77/invoice-wemaad/internal/mailer"
	"github.com/diewo77/invoice-wemaad/internal/services"
	"github.com/diewo77/invoice-wemaad/validation"
)

// AuthHandler implements passwordless sign-in by emailed magic link.
type AuthHandler struct {
	accounts *services.AccountService
	mail     Mailer
	log      *zap.Logger
	baseURL  string
}

func NewAuthHandler(accounts *services.AccountService, mail Mailer, log *zap.Logger, baseURL string) *AuthHandler {
	return &AuthHandler{accounts: accounts, mail: mail, log: log, baseURL: baseURL}
}

// Login emails a sign-in link to the submitted address.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	p, ok := decode(w, r)
	if !ok {
		return
	}
	email, v := validation.Unwrap(validation.ParseSignIn(p))
	if v != nil {
		invalid(w, r, v)
		return
	}
	link, err := h.accounts.IssueMagicLink(r.Context(), email)
	if err != nil {
		logFailure(h.log, r, "issue magic link", err)
		fail(w, r, http.StatusInternalServerError, "failed_send_magic_link")
		return
	}
	vars := mailer.Vars{
		"url":  h.baseURL + "/auth/verify?token=" + url.QueryEscape(link.Token),
		"host": hostOf(h.baseURL),
	}
	if err := h.mail.SendEmail(r.Context(), link.Email, mailer.MagicLink, vars); err != nil {
		logFailure(h.log, r, "send magic link", err)
		fail(w, r, http.StatusInternalServerError, "failed_send_magic_link")
		return
	}
	done(w, r, "/?sent=1")
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	return u.Host
}

// Verify consumes a magic link and starts a session. New users go to
// onboarding.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.ConsumeMagicLink(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.log.Info("magic link rejected", zap.Error(err))
		httpx.StatusError(w, http.StatusUnauthorized, i18n.T(lang(r), "invalid_token"))
		return
	}
	auth.CreateSession(w, user.ID)
	next := "/dashboard"
	if !user.Onboarded {
		next = "/onboarding"
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"status": httpx.ResultSuccess, "redirect": next})
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	done(w, r, "/")
}
