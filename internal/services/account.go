package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/auth"
	"github.com/diewo77/invoice-wemaad/internal/models"
)

// AccountService backs passwordless sign-in: it records issued magic links,
// consumes them once and resolves the signed-in user.
type AccountService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db, now: time.Now}
}

// tokenSignature is the last segment of a signed token. Only its bcrypt hash
// is stored.
func tokenSignature(token string) string {
	if i := strings.LastIndexByte(token, '.'); i >= 0 {
		return token[i+1:]
	}
	return token
}

// IssueMagicLink signs a link for email and records its token id.
func (s *AccountService) IssueMagicLink(ctx context.Context, email string) (auth.MagicLink, error) {
	link, err := auth.IssueMagicLink(email, s.now())
	if err != nil {
		return auth.MagicLink{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tokenSignature(link.Token)), bcrypt.DefaultCost)
	if err != nil {
		return auth.MagicLink{}, fmt.Errorf("hash magic link: %w", err)
	}
	row := models.VerificationToken{
		Identifier: link.Email,
		JTI:        link.ID,
		TokenHash:  string(hash),
		ExpiresAt:  link.ExpiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return auth.MagicLink{}, err
	}
	return link, nil
}

// ConsumeMagicLink verifies token, marks it used and returns the matching
// user, creating the account on first sign-in. A token can be consumed once.
func (s *AccountService) ConsumeMagicLink(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseMagicLink(token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.VerificationToken
		err := tx.Where("jti = ? AND identifier = ? AND used_at IS NULL AND expires_at > ?", claims.ID, claims.Email, now).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.ErrInvalidToken
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(row.TokenHash), []byte(tokenSignature(token))) != nil {
			return auth.ErrInvalidToken
		}
		res := tx.Model(&row).Where("used_at IS NULL").Update("used_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auth.ErrInvalidToken
		}
		return tx.Where(models.User{Email: claims.Email}).FirstOrCreate(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether id names a stored user.
func (s *AccountService) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

