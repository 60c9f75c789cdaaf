// Package handlers holds the action handlers: each one guards the session,
// validates the payload, calls the services and answers with either the
// action result envelope or a redirect.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/auth"
	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/i18n"
	"github.com/diewo77/invoice-wemaad/internal/mailer"
	"github.com/diewo77/invoice-wemaad/internal/middleware"
	"github.com/diewo77/invoice-wemaad/validation"
)

// Mailer is the part of the notification dispatcher the handlers use.
type Mailer interface {
	SendEmail(ctx context.Context, to string, name mailer.TemplateName, vars mailer.Vars) error
	Notify(ctx context.Context, to string, name mailer.TemplateName, vars mailer.Vars)
}

func lang(r *http.Request) string {
	return middleware.LangFrom(r.Context())
}

// currentUser resolves the session user. When there is none it writes the
// response itself and returns false.
func currentUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	uid, err := auth.RequireSession(r.Context())
	if err == nil {
		return uid, true
	}
	if !errors.Is(err, auth.ErrUnauthenticated) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return 0, false
	}
	if httpx.WantsJSON(r) || r.Method != http.MethodGet {
		httpx.ActionError(w, http.StatusUnauthorized, httpx.FormError(i18n.T(lang(r), "user_not_found")))
		return 0, false
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return 0, false
}

func decode(w http.ResponseWriter, r *http.Request) (validation.Payload, bool) {
	p, err := httpx.DecodePayload(r)
	if err != nil {
		httpx.ActionError(w, http.StatusBadRequest, httpx.FormError(err.Error()))
		return nil, false
	}
	return p, true
}

// fieldErrors translates violation codes into the envelope's message lists.
func fieldErrors(lng string, v validation.Violations) map[string][]string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string][]string, len(v))
	for _, k := range keys {
		out[k] = []string{i18n.T(lng, v[k])}
	}
	return out
}

func invalid(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	httpx.ActionError(w, http.StatusUnprocessableEntity, fieldErrors(lang(r), v))
}

func fail(w http.ResponseWriter, r *http.Request, status int, code string) {
	httpx.ActionError(w, status, httpx.FormError(i18n.T(lang(r), code)))
}

// done answers a successful action: the envelope for JSON callers, a 303 to
// next for everyone else.
func done(w http.ResponseWriter, r *http.Request, next string) {
	if httpx.WantsJSON(r) {
		httpx.Success(w)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func pathID(w http.ResponseWriter, r *http.Request, name, notFound string) (uint, bool) {
	id, ok := httpx.PathID(r, name)
	if !ok {
		fail(w, r, http.StatusNotFound, notFound)
	}
	return id, ok
}

func logFailure(log *zap.Logger, r *http.Request, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("path", r.URL.Path), zap.Error(err))
	log.Error(msg, fields...)
}
