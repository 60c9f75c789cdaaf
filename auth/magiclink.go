package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MagicLinkTTL bounds how long an emailed sign-in link stays valid.
const MagicLinkTTL = 24 * time.Hour

const magicLinkIssuer = "invoice-wemaad"

var ErrInvalidToken = errors.New("auth: invalid or expired token")

// MagicLinkClaims identify the email a sign-in link was issued to. The token
// id (jti) is recorded server-side so a link can be used only once.
type MagicLinkClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// MagicLink is a freshly issued sign-in token.
type MagicLink struct {
	Token     string
	ID        string
	Email     string
	ExpiresAt time.Time
}

// IssueMagicLink signs a single-use sign-in token for email.
func IssueMagicLink(email string, now time.Time) (MagicLink, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	id := uuid.NewString()
	exp := now.Add(MagicLinkTTL)
	claims := MagicLinkClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    magicLinkIssuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret()))
	if err != nil {
		return MagicLink{}, fmt.Errorf("sign magic link: %w", err)
	}
	return MagicLink{Token: signed, ID: id, Email: email, ExpiresAt: exp}, nil
}

// ParseMagicLink verifies signature, issuer and expiry.
func ParseMagicLink(token string) (*MagicLinkClaims, error) {
	claims := &MagicLinkClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(Secret()), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(magicLinkIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
