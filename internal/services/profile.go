package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/internal/models"
	"github.com/diewo77/invoice-wemaad/validation"
)

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

var profileColumns = []string{
	"FirstName", "LastName", "Address", "Name", "Onboarded",
	"CompanyName", "CompanyEmail", "CompanyAddress", "CompanyTaxID", "CompanyLogoURL", "StampsURL",
	"BankName", "BankAccountName", "BankAccountNumber", "BankSwiftCode", "BankIBAN", "BankAddress",
}

// Get returns the user's own record.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func displayName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// Onboard stores the first-run details and flags the user as onboarded.
func (s *ProfileService) Onboard(ctx context.Context, userID uint, in validation.Onboarding) (*models.User, error) {
	return s.save(ctx, userID, []string{"FirstName", "LastName", "Address", "Name", "Onboarded"}, in)
}

// Update replaces the whole profile, company and bank details included.
func (s *ProfileService) Update(ctx context.Context, userID uint, in validation.Onboarding) (*models.User, error) {
	return s.save(ctx, userID, profileColumns, in)
}

func (s *ProfileService) save(ctx context.Context, userID uint, columns []string, in validation.Onboarding) (*models.User, error) {
	patch := models.User{
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Address:           in.Address,
		Name:              displayName(in.FirstName, in.LastName),
		Onboarded:         true,
		CompanyName:       in.CompanyName,
		CompanyEmail:      in.CompanyEmail,
		CompanyAddress:    in.CompanyAddress,
		CompanyTaxID:      in.CompanyTaxID,
		CompanyLogoURL:    in.CompanyLogoURL,
		StampsURL:         in.StampsURL,
		BankName:          in.BankName,
		BankAccountName:   in.BankAccountName,
		BankAccountNumber: in.BankAccountNumber,
		BankSwiftCode:     in.BankSwiftCode,
		BankIBAN:          in.BankIBAN,
		BankAddress:       in.BankAddress,
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Select(columns).Updates(&patch)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return s.Get(ctx, userID)
}
