package pdf

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/diewo77/invoice-wemaad/internal/models"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// LongDate is the en-US long date layout used on documents and in emails.
const LongDate = "January 2, 2006"

// FormatCurrency renders amount the en-US way, e.g. "$1,234.50",
// "€1,234.50" or "EGP 1,234.50".
func FormatCurrency(amount float64, currency models.Currency) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	n := printer.Sprintf("%.2f", amount)
	switch currency {
	case models.CurrencyUSD:
		return sign + "$" + n
	case models.CurrencyEUR:
		return sign + "€" + n
	default:
		return fmt.Sprintf("%s%s %s", sign, currency, n)
	}
}

// FormatLongDate formats t as "January 31, 2024".
func FormatLongDate(t time.Time) string {
	return t.Format(LongDate)
}

// DueLabel is the due-date cell: the issue date plus the payment term.
func DueLabel(inv *models.Invoice) string {
	return FormatLongDate(inv.DueAt())
}
