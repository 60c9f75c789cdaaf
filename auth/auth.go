package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	userIDCtxKey      = ctxKey("userID")

	// SessionTTL is how long a signed-in browser stays signed in.
	SessionTTL = 30 * 24 * time.Hour
)

// ErrUnauthenticated is returned by RequireSession when the request carries
// no valid session.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// UserVerifier is an optional callback to validate that a session's user still exists.
// Set it during app bootstrap via SetUserVerifier. If nil, no extra verification is performed.
type UserVerifier func(ctx context.Context, uid uint) bool

var verifier UserVerifier

// SetUserVerifier configures the global verifier used by RequireSession.
func SetUserVerifier(v UserVerifier) { verifier = v }

// DefaultSecret is only acceptable in development.
const DefaultSecret = "devsessionsecret"

var configuredSecret string

// SetSecret overrides SESSION_SECRET for signing sessions and magic links.
func SetSecret(s string) { configuredSecret = s }

// Secret returns the configured secret, SESSION_SECRET or default dev value.
func Secret() string {
	if configuredSecret != "" {
		return configuredSecret
	}
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return DefaultSecret
}

func sign(value string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie with the user id.
func CreateSession(w http.ResponseWriter, userID uint) {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    uidStr + "." + sign(uidStr),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(SessionTTL),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates cookie and returns user id.
func ParseSession(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	uidStr, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return 0, false
	}
	if !hmac.Equal([]byte(sig), []byte(sign(uidStr))) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDCtxKey).(uint)
	return id, ok && id != 0
}

// RequireSession resolves the signed-in user for an action. It fails with
// ErrUnauthenticated when there is no session or the user no longer exists.
func RequireSession(ctx context.Context) (uint, error) {
	uid, ok := UserIDFromContext(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	if verifier != nil && !verifier(ctx, uid) {
		return 0, ErrUnauthenticated
	}
	return uid, nil
}

// Middleware attaches user id to request context if present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := ParseSession(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

