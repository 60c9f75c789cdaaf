package models

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// AddressType classifies a client address.
type AddressType string

const (
	AddressBilling  AddressType = "BILLING"
	AddressShipping AddressType = "SHIPPING"
	AddressOther    AddressType = "OTHER"
)

// Client represents a customer of a user.
// Implements the Ownable interface for ownership-based authorization.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owner of this client (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`

	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"size:255" json:"email,omitempty"`
	Phone    string `gorm:"size:50" json:"phone,omitempty"`
	TaxID    string `gorm:"size:100" json:"tax_id,omitempty"`
	Website  string `gorm:"size:500" json:"website,omitempty"`
	Notes    string `gorm:"type:text" json:"notes,omitempty"`
	Category string `gorm:"size:100" json:"category,omitempty"`
	// Tags is stored comma-joined.
	Tags string `gorm:"size:1000" json:"tags,omitempty"`

	Addresses      []Address           `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	ContactPersons []ContactPerson     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"contact_persons,omitempty"`
	CustomFields   []ClientCustomField `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"custom_fields,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (c *Client) GetUserID() uint {
	return c.UserID
}

// DefaultAddress returns the address flagged as default, else the first one.
func (c *Client) DefaultAddress() *Address {
	if a, ok := lo.Find(c.Addresses, func(a Address) bool { return a.IsDefault }); ok {
		return &a
	}
	if len(c.Addresses) > 0 {
		return &c.Addresses[0]
	}
	return nil
}

// PrimaryContact returns the contact flagged as primary, or nil.
func (c *Client) PrimaryContact() *ContactPerson {
	if p, ok := lo.Find(c.ContactPersons, func(p ContactPerson) bool { return p.IsPrimary }); ok {
		return &p
	}
	return nil
}

type Address struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	ClientID  uint        `gorm:"index;not null" json:"client_id"`
	Type      AddressType `gorm:"size:20;not null;default:'BILLING'" json:"type"`
	Street    string      `gorm:"size:500;not null" json:"street"`
	City      string      `gorm:"size:255;not null" json:"city"`
	State     string      `gorm:"size:255" json:"state,omitempty"`
	Country   string      `gorm:"size:255;not null" json:"country"`
	ZipCode   string      `gorm:"size:20;not null" json:"zip_code"`
	IsDefault bool        `gorm:"not null;default:false" json:"is_default"`
}

// Lines returns the address formatted for print.
func (a *Address) Lines() []string {
	cityLine := strings.TrimSpace(strings.Join(lo.Compact([]string{a.City, a.State, a.ZipCode}), ", "))
	return lo.Compact([]string{a.Street, cityLine, a.Country})
}

type ContactPerson struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ClientID  uint   `gorm:"index;not null" json:"client_id"`
	FirstName string `gorm:"size:255;not null" json:"first_name"`
	LastName  string `gorm:"size:255;not null" json:"last_name"`
	Email     string `gorm:"size:255;not null" json:"email"`
	Phone     string `gorm:"size:50" json:"phone,omitempty"`
	Position  string `gorm:"size:255" json:"position,omitempty"`
	IsPrimary bool   `gorm:"not null;default:false" json:"is_primary"`
}

func (p *ContactPerson) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type ClientCustomField struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClientID uint   `gorm:"index;not null" json:"client_id"`
	Key      string `gorm:"size:255;not null" json:"key"`
	Value    string `gorm:"size:1000;not null" json:"value"`
}
