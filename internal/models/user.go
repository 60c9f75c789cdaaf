package models

import (
	"strings"
	"time"
)

// User is an account owner. It carries the company and bank details printed
// on the owner's invoices.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string `gorm:"size:255" json:"name,omitempty"`
	FirstName string `gorm:"size:255" json:"first_name,omitempty"`
	LastName  string `gorm:"size:255" json:"last_name,omitempty"`
	Address   string `gorm:"size:500" json:"address,omitempty"`
	Onboarded bool   `gorm:"not null;default:false" json:"onboarded"`

	// Company profile
	CompanyName    string `gorm:"size:255" json:"company_name,omitempty"`
	CompanyEmail   string `gorm:"size:255" json:"company_email,omitempty"`
	CompanyAddress string `gorm:"size:500" json:"company_address,omitempty"`
	CompanyTaxID   string `gorm:"size:100" json:"company_tax_id,omitempty"`
	CompanyLogoURL string `gorm:"size:1000" json:"company_logo_url,omitempty"`
	StampsURL      string `gorm:"size:1000" json:"stamps_url,omitempty"`

	// Bank transfer details
	BankName          string `gorm:"size:255" json:"bank_name,omitempty"`
	BankAccountName   string `gorm:"size:255" json:"bank_account_name,omitempty"`
	BankAccountNumber string `gorm:"size:100" json:"bank_account_number,omitempty"`
	BankSwiftCode     string `gorm:"size:50" json:"bank_swift_code,omitempty"`
	BankIBAN          string `gorm:"size:100" json:"bank_iban,omitempty"`
	BankAddress       string `gorm:"size:500" json:"bank_address,omitempty"`
}

// FullName joins first and last name, falling back to Name.
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Name
	}
	return full
}

// HasBankDetails reports whether any bank field is filled in.
func (u *User) HasBankDetails() bool {
	return u.BankName != "" || u.BankAccountName != "" || u.BankAccountNumber != "" ||
		u.BankSwiftCode != "" || u.BankIBAN != "" || u.BankAddress != ""
}

// VerificationToken records an issued magic link so it can be consumed once.
type VerificationToken struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	Identifier string    `gorm:"size:255;index;not null"`
	JTI        string    `gorm:"size:64;uniqueIndex;not null"`
	TokenHash  string    `gorm:"size:100;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	UsedAt     *time.Time
}
