package validation

// Onboarding is the owner's personal, company and bank profile. The same
// shape backs the first-run onboarding form and later profile edits.
type Onboarding struct {
	FirstName string
	LastName  string
	Address   string

	CompanyName    string
	CompanyEmail   string
	CompanyAddress string
	CompanyTaxID   string
	CompanyLogoURL string
	StampsURL      string

	BankName          string
	BankAccountName   string
	BankAccountNumber string
	BankSwiftCode     string
	BankIBAN          string
	BankAddress       string
}

// ParseOnboarding validates an onboarding or profile payload.
func ParseOnboarding(p Payload) Result[Onboarding] {
	v := Violations{}
	o := Onboarding{
		FirstName:         p.Get("firstName"),
		LastName:          p.Get("lastName"),
		Address:           p.Get("address"),
		CompanyName:       p.Get("companyName"),
		CompanyEmail:      p.Get("companyEmail"),
		CompanyAddress:    p.Get("companyAddress"),
		CompanyTaxID:      p.Get("companyTaxId"),
		CompanyLogoURL:    p.Get("companyLogoUrl"),
		StampsURL:         p.Get("stampsUrl"),
		BankName:          p.Get("bankName"),
		BankAccountName:   p.Get("bankAccountName"),
		BankAccountNumber: p.Get("bankAccountNumber"),
		BankSwiftCode:     p.Get("bankSwiftCode"),
		BankIBAN:          p.Get("bankIBAN"),
		BankAddress:       p.Get("bankAddress"),
	}
	Required("firstName", o.FirstName, v)
	Required("lastName", o.LastName, v)
	Required("address", o.Address, v)
	Email("companyEmail", o.CompanyEmail, v)
	URL("companyLogoUrl", o.CompanyLogoURL, v)
	URL("stampsUrl", o.StampsURL, v)
	maxLengths(v,
		limit{"firstName", o.FirstName, 255},
		limit{"lastName", o.LastName, 255},
		limit{"address", o.Address, 500},
		limit{"companyName", o.CompanyName, 255},
		limit{"companyEmail", o.CompanyEmail, 255},
		limit{"companyAddress", o.CompanyAddress, 500},
		limit{"companyTaxId", o.CompanyTaxID, 100},
		limit{"companyLogoUrl", o.CompanyLogoURL, 1000},
		limit{"stampsUrl", o.StampsURL, 1000},
		limit{"bankName", o.BankName, 255},
		limit{"bankAccountName", o.BankAccountName, 255},
		limit{"bankAccountNumber", o.BankAccountNumber, 100},
		limit{"bankSwiftCode", o.BankSwiftCode, 50},
		limit{"bankIBAN", o.BankIBAN, 100},
		limit{"bankAddress", o.BankAddress, 500},
	)
	return finish(o, v)
}
