package validation

import (
	"math"
	"strconv"
	"time"

	"github.com/diewo77/invoice-wemaad/internal/models"
)

var InvoiceStatuses = []string{"PENDING", "PAID"}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// InvoiceInput is a validated invoice form. Total is derived from the line
// item and never read from the payload. InvoiceNumber is zero when the form
// left it blank.
type InvoiceInput struct {
	InvoiceName   string
	InvoiceNumber int
	Status        string
	Currency      string
	Date          time.Time
	DueDate       int
	ClientID      uint

	FromName    string
	FromEmail   string
	FromAddress string

	Note                   string
	InvoiceItemDescription string
	InvoiceItemQuantity    int
	InvoiceItemRate        float64
	Total                  float64
}

// ParseInvoice validates an invoice create or edit payload.
func ParseInvoice(p Payload) Result[InvoiceInput] {
	v := Violations{}
	in := InvoiceInput{
		InvoiceName:            p.Get("invoiceName"),
		Status:                 p.Get("status"),
		Currency:               p.Get("currency"),
		FromName:               p.Get("fromName"),
		FromEmail:              p.Get("fromEmail"),
		FromAddress:            p.Get("fromAddress"),
		Note:                   p.Get("note"),
		InvoiceItemDescription: p.Get("invoiceItemDescription"),
	}

	if in.InvoiceName == "" {
		v.Add("invoiceName", "invoice_name_required")
	}
	if in.Status == "" {
		in.Status = "PENDING"
	}
	OneOf("status", in.Status, InvoiceStatuses, "invalid_status", v)
	if Required("currency", in.Currency, v) && !models.Currency(in.Currency).Valid() {
		v.Add("currency", "invalid_currency")
	}
	if Required("date", p.Get("date"), v) {
		in.Date = parseDate("date", p.Get("date"), v)
	}
	if Required("dueDate", p.Get("dueDate"), v) {
		in.DueDate = Int("dueDate", p.Get("dueDate"), 0, "due_date_min", v)
	}
	if p.Has("invoiceNumber") {
		in.InvoiceNumber = Int("invoiceNumber", p.Get("invoiceNumber"), 1, "invoice_number_min", v)
	}
	if Required("clientId", p.Get("clientId"), v) {
		id, err := strconv.ParseUint(p.Get("clientId"), 10, 64)
		if err != nil || id == 0 {
			v.Add("clientId", "expected_number")
		}
		in.ClientID = uint(id)
	}

	Required("fromName", in.FromName, v)
	if Required("fromEmail", in.FromEmail, v) {
		Email("fromEmail", in.FromEmail, v)
	}
	Required("fromAddress", in.FromAddress, v)
	Required("invoiceItemDescription", in.InvoiceItemDescription, v)

	if Required("invoiceItemQuantity", p.Get("invoiceItemQuantity"), v) {
		in.InvoiceItemQuantity = Int("invoiceItemQuantity", p.Get("invoiceItemQuantity"), 1, "quantity_min", v)
	}
	if Required("invoiceItemRate", p.Get("invoiceItemRate"), v) {
		in.InvoiceItemRate = Float("invoiceItemRate", p.Get("invoiceItemRate"), 1, "rate_min", v)
	}
	in.Total = LineTotal(in.InvoiceItemQuantity, in.InvoiceItemRate)
	if !v.Has("invoiceItemQuantity") && !v.Has("invoiceItemRate") {
		switch {
		case math.IsNaN(in.Total) || math.IsInf(in.Total, 0) || in.Total > MaxAmount:
			v.Add("total", "total_max")
		case in.Total < 1:
			v.Add("total", "total_min")
		}
	}
	maxLengths(v,
		limit{"invoiceName", in.InvoiceName, 255},
		limit{"fromName", in.FromName, 255},
		limit{"fromEmail", in.FromEmail, 255},
		limit{"fromAddress", in.FromAddress, 500},
		limit{"invoiceItemDescription", in.InvoiceItemDescription, 1000},
	)
	return finish(in, v)
}

// LineTotal is the amount due for a single line item.
func LineTotal(quantity int, rate float64) float64 {
	return float64(quantity) * rate
}

func parseDate(field, raw string, v Violations) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	v.Add(field, "invalid_date")
	return time.Time{}
}
