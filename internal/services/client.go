package services

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/internal/models"
	"github.com/diewo77/invoice-wemaad/internal/policy"
	"github.com/diewo77/invoice-wemaad/validation"
)

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

var clientScalarColumns = []string{"Name", "Email", "Phone", "TaxID", "Website", "Notes", "Category", "Tags"}

func clientScalars(in validation.ClientInput) models.Client {
	return models.Client{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		TaxID:    in.TaxID,
		Website:  in.Website,
		Notes:    in.Notes,
		Category: in.Category,
		Tags:     strings.Join(in.Tags, ","),
	}
}

func addressRows(clientID uint, in []validation.AddressInput) []models.Address {
	return lo.Map(in, func(a validation.AddressInput, _ int) models.Address {
		return models.Address{
			ClientID:  clientID,
			Type:      models.AddressType(a.Type),
			Street:    a.Street,
			City:      a.City,
			State:     a.State,
			Country:   a.Country,
			ZipCode:   a.ZipCode,
			IsDefault: a.IsDefault,
		}
	})
}

func contactRows(clientID uint, in []validation.ContactPersonInput) []models.ContactPerson {
	return lo.Map(in, func(c validation.ContactPersonInput, _ int) models.ContactPerson {
		return models.ContactPerson{
			ClientID:  clientID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Position:  c.Position,
			IsPrimary: c.IsPrimary,
		}
	})
}

func customFieldRows(clientID uint, in []validation.CustomFieldInput) []models.ClientCustomField {
	return lo.Map(in, func(f validation.CustomFieldInput, _ int) models.ClientCustomField {
		return models.ClientCustomField{ClientID: clientID, Key: f.Key, Value: f.Value}
	})
}

// Create persists a client and its collections in one insert.
func (s *ClientService) Create(ctx context.Context, userID uint, in validation.ClientInput) (*models.Client, error) {
	c := clientScalars(in)
	c.UserID = userID
	c.Addresses = addressRows(0, in.Addresses)
	c.ContactPersons = contactRows(0, in.ContactPersons)
	c.CustomFields = customFieldRows(0, in.CustomFields)
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Update replaces an owned client's scalar fields and all three collections
// atomically. Existing child rows are deleted and the submitted ones
// inserted; any failure rolls the whole edit back.
func (s *ClientService) Update(ctx context.Context, userID, id uint, in validation.ClientInput) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(policy.OwnedBy(userID)).First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		if err := deleteChildren(tx, c.ID); err != nil {
			return err
		}
		if rows := addressRows(c.ID, in.Addresses); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if rows := contactRows(c.ID, in.ContactPersons); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if rows := customFieldRows(c.ID, in.CustomFields); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return tx.Model(&c).Select(clientScalarColumns).Updates(clientScalars(in)).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

func deleteChildren(tx *gorm.DB, clientID uint) error {
	for _, child := range []any{&models.Address{}, &models.ContactPerson{}, &models.ClientCustomField{}} {
		if err := tx.Where("client_id = ?", clientID).Delete(child).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get returns an owned client with all of its collections.
func (s *ClientService) Get(ctx context.Context, userID, id uint) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).Scopes(policy.OwnedBy(userID)).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("ContactPersons", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("CustomFields", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the owner's clients by name.
func (s *ClientService) List(ctx context.Context, userID uint) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).Scopes(policy.OwnedBy(userID)).
		Preload("Addresses").
		Preload("ContactPersons").
		Order("name asc").Order("id asc").
		Find(&clients).Error
	return clients, err
}

// Delete removes an owned client and its collections. Invoices that
// referenced it are kept and detached from the client.
func (s *ClientService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Client
		if err := tx.Scopes(policy.OwnedBy(userID)).First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		if err := tx.Model(&models.Invoice{}).Scopes(policy.OwnedBy(userID)).
			Where("client_id = ?", c.ID).Update("client_id", nil).Error; err != nil {
			return err
		}
		if err := deleteChildren(tx, c.ID); err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
}
