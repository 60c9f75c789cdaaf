package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/invoice-wemaad/internal/models"
	"github.com/diewo77/invoice-wemaad/internal/policy"
	"github.com/diewo77/invoice-wemaad/validation"
)

type InvoiceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, now: time.Now}
}

// Summary is the owner's dashboard aggregate.
type Summary struct {
	Invoices     int64   `json:"invoices"`
	Clients      int64   `json:"clients"`
	PaidTotal    float64 `json:"paid_total"`
	PendingTotal float64 `json:"pending_total"`
}

// RevenuePoint is the paid total for one calendar day (UTC).
type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

const (
	RecentLimit   = 7
	RevenueWindow = 30 * 24 * time.Hour
)

func applyInvoiceInput(inv *models.Invoice, in validation.InvoiceInput) {
	inv.InvoiceName = in.InvoiceName
	inv.Currency = models.Currency(in.Currency)
	inv.Date = in.Date
	inv.DueDate = in.DueDate
	clientID := in.ClientID
	inv.ClientID = &clientID
	inv.FromName = in.FromName
	inv.FromEmail = in.FromEmail
	inv.FromAddress = in.FromAddress
	inv.Note = in.Note
	inv.InvoiceItemDescription = in.InvoiceItemDescription
	inv.InvoiceItemQuantity = in.InvoiceItemQuantity
	inv.InvoiceItemRate = in.InvoiceItemRate
	inv.Total = inv.ComputeTotal()
	if in.InvoiceNumber > 0 {
		inv.InvoiceNumber = in.InvoiceNumber
	}
}

func ensureClientOwned(tx *gorm.DB, userID, clientID uint) error {
	var c models.Client
	err := tx.Select("id", "user_id").First(&c, clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrClientNotFound
	}
	if err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if !policy.Owns(userID, &c) {
		return ErrClientNotFound
	}
	return nil
}

func nextInvoiceNumber(tx *gorm.DB, userID uint) (int, error) {
	var highest int
	err := tx.Model(&models.Invoice{}).Scopes(policy.OwnedBy(userID)).
		Select("COALESCE(MAX(invoice_number), 0)").Scan(&highest).Error
	if err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return highest + 1, nil
}

// Create persists a new invoice for userID. The total is recomputed from the
// line item and a blank invoice number takes the owner's next number.
func (s *InvoiceService) Create(ctx context.Context, userID uint, in validation.InvoiceInput) (*models.Invoice, error) {
	inv := models.Invoice{UserID: userID, Status: models.InvoiceStatus(in.Status)}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusPending
	}
	applyInvoiceInput(&inv, in)
	if inv.IsPaid() {
		paidAt := s.now()
		inv.PaidAt = &paidAt
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureClientOwned(tx, userID, in.ClientID); err != nil {
			return err
		}
		if inv.InvoiceNumber == 0 {
			n, err := nextInvoiceNumber(tx, userID)
			if err != nil {
				return err
			}
			inv.InvoiceNumber = n
		}
		return tx.Omit(clause.Associations).Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Update rewrites an owned invoice from in. Status is left alone; only
// MarkPaid changes it.
func (s *InvoiceService) Update(ctx context.Context, userID, id uint, in validation.InvoiceInput) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(policy.OwnedBy(userID)).First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if err := ensureClientOwned(tx, userID, in.ClientID); err != nil {
			return err
		}
		applyInvoiceInput(&inv, in)
		return tx.Omit(clause.Associations).Save(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Get returns an owned invoice with its client.
func (s *InvoiceService) Get(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Scopes(policy.OwnedBy(userID)).Preload("Client").First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns the owner's invoices, newest first.
func (s *InvoiceService) List(ctx context.Context, userID uint) ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.db.WithContext(ctx).Scopes(policy.OwnedBy(userID)).
		Preload("Client").
		Order("created_at desc").Order("id desc").
		Find(&invs).Error
	return invs, err
}

// Delete removes an owned invoice.
func (s *InvoiceService) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Scopes(policy.OwnedBy(userID)).Delete(&models.Invoice{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// MarkPaid moves an owned invoice to PAID. Calling it on a paid invoice
// succeeds and keeps the original payment time.
func (s *InvoiceService) MarkPaid(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(policy.OwnedBy(userID)).First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		next, err := nextStatus(ctx, inv.Status, triggerMarkPaid)
		if err != nil {
			return err
		}
		if next == inv.Status {
			return nil
		}
		paidAt := s.now()
		inv.Status = next
		inv.PaidAt = &paidAt
		return tx.Model(&inv).Select("Status", "PaidAt").Updates(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// hydrate loads what the document renderer and notifications need: the
// issuer, the client, its default address and its primary contact.
func hydrate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Client").
		Preload("Client.Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_default desc").Order("id asc").Limit(1)
		}).
		Preload("Client.ContactPersons", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_primary = ?", true).Order("id asc").Limit(1)
		})
}

// ForDocument returns an owned, fully hydrated invoice. Invoices owned by
// someone else are reported as not found.
func (s *InvoiceService) ForDocument(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := hydrate(s.db.WithContext(ctx)).First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if !policy.Owns(userID, &inv) {
		return nil, ErrInvoiceNotFound
	}
	return &inv, nil
}

// ByPublicID returns a fully hydrated invoice by its shareable id, without
// an owner check.
func (s *InvoiceService) ByPublicID(ctx context.Context, publicID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := hydrate(s.db.WithContext(ctx)).Where("public_id = ?", publicID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Recipient resolves the primary contact to notify about an owned invoice.
func (s *InvoiceService) Recipient(ctx context.Context, userID, id uint) (*models.Invoice, *models.ContactPerson, error) {
	inv, err := s.ForDocument(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if inv.Client == nil {
		return inv, nil, ErrNoPrimaryContact
	}
	contact := inv.Client.PrimaryContact()
	if contact == nil {
		return inv, nil, ErrNoPrimaryContact
	}
	return inv, contact, nil
}

// Summary aggregates the owner's invoices and clients.
func (s *InvoiceService) Summary(ctx context.Context, userID uint) (Summary, error) {
	var sum Summary
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Invoice{}).Scopes(policy.OwnedBy(userID)).Count(&sum.Invoices).Error; err != nil {
		return sum, err
	}
	if err := db.Model(&models.Client{}).Scopes(policy.OwnedBy(userID)).Count(&sum.Clients).Error; err != nil {
		return sum, err
	}
	totalFor := func(status models.InvoiceStatus, dst *float64) error {
		return db.Model(&models.Invoice{}).Scopes(policy.OwnedBy(userID)).
			Where("status = ?", status).
			Select("COALESCE(SUM(total), 0)").Scan(dst).Error
	}
	if err := totalFor(models.InvoiceStatusPaid, &sum.PaidTotal); err != nil {
		return sum, err
	}
	if err := totalFor(models.InvoiceStatusPending, &sum.PendingTotal); err != nil {
		return sum, err
	}
	return sum, nil
}

// Recent returns the owner's newest invoices, at most RecentLimit of them.
func (s *InvoiceService) Recent(ctx context.Context, userID uint) ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.db.WithContext(ctx).Scopes(policy.OwnedBy(userID)).
		Preload("Client").
		Order("created_at desc").Order("id desc").
		Limit(RecentLimit).
		Find(&invs).Error
	return invs, err
}

// RevenueSeries sums the owner's paid invoices created within the last
// RevenueWindow, one point per day, oldest first.
func (s *InvoiceService) RevenueSeries(ctx context.Context, userID uint) ([]RevenuePoint, error) {
	now := s.now()
	var invs []models.Invoice
	err := s.db.WithContext(ctx).Scopes(policy.OwnedBy(userID)).
		Select("created_at", "total").
		Where("status = ?", models.InvoiceStatusPaid).
		Where("created_at >= ? AND created_at <= ?", now.Add(-RevenueWindow), now).
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	byDay := lo.GroupBy(invs, func(inv models.Invoice) string {
		return inv.CreatedAt.UTC().Format(time.DateOnly)
	})
	points := lo.MapToSlice(byDay, func(day string, group []models.Invoice) RevenuePoint {
		return RevenuePoint{Date: day, Amount: lo.SumBy(group, func(inv models.Invoice) float64 { return inv.Total })}
	})
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}
