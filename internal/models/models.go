// Package models defines the GORM entities of the invoicing domain.
package models

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&VerificationToken{},
		&Client{},
		&Address{},
		&ContactPerson{},
		&ClientCustomField{},
		&Invoice{},
	}
}
