// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"context"
	"net/http"

	"github.com/diewo77/invoice-wemaad/i18n"
)

type ctxKey string

const (
	langCtxKey     = ctxKey("lang")
	langCookieName = "lang"
)

// Preferences resolves the request language from the ?lang= query, the lang
// cookie or Accept-Language, in that order. A supported ?lang= is persisted
// in the cookie.
func Preferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie(langCookieName); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     langCookieName,
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
	})
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langCtxKey, lang)
}

// LangFrom returns the request language, or i18n.Default.
func LangFrom(ctx context.Context) string {
	if lang, ok := ctx.Value(langCtxKey).(string); ok && lang != "" {
		return lang
	}
	return i18n.Default
}
