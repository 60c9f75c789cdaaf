package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/invoice-wemaad/internal/models"
)

// DemoEmail is the account Seed creates.
const DemoEmail = "demo@wemaad.com"

// Seed creates a demo user with one client and one invoice. It is
// idempotent: an existing demo user leaves the database untouched.
func Seed(conn *gorm.DB) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", DemoEmail).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user := models.User{
			Email:          DemoEmail,
			Name:           "Demo User",
			FirstName:      "Demo",
			LastName:       "User",
			Address:        "12 Tahrir Square, Cairo",
			Onboarded:      true,
			CompanyName:    "WeMaAd Studio",
			CompanyEmail:   "billing@wemaad.com",
			CompanyAddress: "12 Tahrir Square, Cairo, Egypt",
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		client := models.Client{
			UserID: user.ID,
			Name:   "Nile Traders",
			Email:  "accounts@niletraders.example",
			Addresses: []models.Address{{
				Type: models.AddressBilling, Street: "1 Corniche St", City: "Alexandria",
				Country: "Egypt", ZipCode: "21500", IsDefault: true,
			}},
			ContactPersons: []models.ContactPerson{{
				FirstName: "Amira", LastName: "Saleh", Email: "amira@niletraders.example", IsPrimary: true,
			}},
		}
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		inv := models.Invoice{
			UserID:                 user.ID,
			ClientID:               &client.ID,
			InvoiceName:            "Brand refresh",
			InvoiceNumber:          1,
			Currency:               models.CurrencyUSD,
			Status:                 models.InvoiceStatusPending,
			Date:                   time.Now().UTC().Truncate(24 * time.Hour),
			DueDate:                30,
			FromName:               user.FullName(),
			FromEmail:              user.CompanyEmail,
			FromAddress:            user.CompanyAddress,
			InvoiceItemDescription: "Logo and visual identity",
			InvoiceItemQuantity:    1,
			InvoiceItemRate:        1200,
		}
		inv.Total = inv.ComputeTotal()
		return tx.Omit("User", "Client").Create(&inv).Error
	})
}
