package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/httpx"
)

// Recover turns a handler panic into a 500 JSON error, logging it and
// reporting it to Sentry.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.Recover(fmt.Errorf("panic: %v", rec))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
