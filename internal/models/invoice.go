package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// Currency is one of the supported ISO codes.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyEGP Currency = "EGP"
)

// Valid reports whether c is supported.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyEGP:
		return true
	}
	return false
}

// Invoice is a single-line invoice issued by a user, optionally to one of
// the user's clients. The issuer block is a snapshot taken at edit time; the
// recipient is always read from the Client relation.
// Implements the Ownable interface for ownership-based authorization.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// PublicID is the unguessable id used in shareable invoice links.
	PublicID string `gorm:"size:36;uniqueIndex;not null" json:"public_id"`

	// UserID is the owner of this invoice (for multi-tenant isolation)
	UserID uint  `gorm:"index;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"-"`

	ClientID *uint   `gorm:"index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL" json:"client,omitempty"`

	InvoiceName   string        `gorm:"size:255;not null" json:"invoice_name"`
	InvoiceNumber int           `gorm:"not null" json:"invoice_number"`
	Currency      Currency      `gorm:"size:3;not null" json:"currency"`
	Status        InvoiceStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Date          time.Time     `gorm:"not null" json:"date"`
	// DueDate is an offset in days from Date.
	DueDate int        `gorm:"not null;default:0" json:"due_date"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`

	FromName    string `gorm:"size:255;not null" json:"from_name"`
	FromEmail   string `gorm:"size:255;not null" json:"from_email"`
	FromAddress string `gorm:"size:500;not null" json:"from_address"`

	Note                   string  `gorm:"type:text" json:"note,omitempty"`
	InvoiceItemDescription string  `gorm:"size:1000;not null" json:"invoice_item_description"`
	InvoiceItemQuantity    int     `gorm:"not null" json:"invoice_item_quantity"`
	InvoiceItemRate        float64 `gorm:"not null" json:"invoice_item_rate"`
	Total                  float64 `gorm:"not null" json:"total"`
}

// BeforeCreate assigns the public id.
func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.PublicID == "" {
		i.PublicID = uuid.NewString()
	}
	return nil
}

// GetUserID implements the Ownable interface for authorization.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// ComputeTotal is quantity times rate for the single line item.
func (i *Invoice) ComputeTotal() float64 {
	return float64(i.InvoiceItemQuantity) * i.InvoiceItemRate
}

// DueAt is the issue date shifted by the due-date offset.
func (i *Invoice) DueAt() time.Time {
	return i.Date.AddDate(0, 0, i.DueDate)
}

// IsPaid returns true once the invoice has been marked as paid.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}
