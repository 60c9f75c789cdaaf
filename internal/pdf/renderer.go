// Package pdf renders a hydrated invoice into a PDF document.
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/internal/models"
)

var (
	paidColor    = &props.Color{Red: 22, Green: 163, Blue: 74}
	pendingColor = &props.Color{Red: 37, Green: 99, Blue: 235}
	mutedColor   = &props.Color{Red: 107, Green: 114, Blue: 128}
	headerFill   = &props.Color{Red: 243, Green: 244, Blue: 246}
)

const (
	brandTitle  = "Invoice WeMaAd"
	footerNote  = "This is an automated invoice - No stamp or signature required"
	imageBudget = 10 * time.Second
)

type Renderer struct {
	images ImageFetcher
	log    *zap.Logger
	now    func() time.Time
}

// NewRenderer builds a renderer. A nil fetcher disables logo and stamp images.
func NewRenderer(images ImageFetcher, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{images: images, log: log, now: time.Now}
}

// Render produces the PDF bytes for inv. inv must carry its User and, when
// set, its Client with addresses and contacts preloaded.
func (r *Renderer) Render(ctx context.Context, inv *models.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("pdf: nil invoice")
	}
	user := inv.User
	if user == nil {
		user = &models.User{}
	}

	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()
	m := maroto.New(cfg)

	m.AddRows(r.header(ctx, inv, user)...)
	m.AddRows(infoRows(inv, user)...)
	m.AddRows(partyRows(inv, user)...)
	m.AddRows(itemRows(inv)...)
	if user.HasBankDetails() {
		m.AddRows(bankRows(user)...)
	}
	if stamp := r.image(ctx, user.StampsURL, 4); stamp != nil {
		m.AddRows(row.New(30).Add(col.New(8), stamp))
	}
	m.AddRows(footerRows(r.now())...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate: %w", err)
	}
	return doc.GetBytes(), nil
}

func (r *Renderer) image(ctx context.Context, url string, size int) core.Col {
	if url == "" || r.images == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, imageBudget)
	defer cancel()
	data, ext, err := r.images.Fetch(ctx, url)
	if err != nil {
		r.log.Warn("pdf image skipped", zap.String("url", url), zap.Error(err))
		return nil
	}
	return image.NewFromBytesCol(size, data, ext, props.Rect{Center: true, Percent: 90})
}

func statusBadge(status models.InvoiceStatus) core.Col {
	c := pendingColor
	if status == models.InvoiceStatusPaid {
		c = paidColor
	}
	return text.NewCol(4, string(status), props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Align: align.Right,
		Color: c,
		Top:   8,
	})
}

func (r *Renderer) header(ctx context.Context, inv *models.Invoice, user *models.User) []core.Row {
	brand := r.image(ctx, user.CompanyLogoURL, 8)
	if brand == nil {
		brand = text.NewCol(8, brandTitle, props.Text{Size: 20, Style: fontstyle.Bold, Top: 6})
	}
	return []core.Row{
		row.New(24).Add(brand, statusBadge(inv.Status)),
		row.New(4).Add(line.NewCol(12, props.Line{Color: mutedColor, Thickness: 0.2})),
	}
}

func labelValue(label, value string) []core.Col {
	return []core.Col{
		text.NewCol(3, label, props.Text{Size: 9, Color: mutedColor}),
		text.NewCol(9, value, props.Text{Size: 10, Style: fontstyle.Bold}),
	}
}

func infoRows(inv *models.Invoice, user *models.User) []core.Row {
	name := inv.InvoiceName
	if name == "" {
		name = "Invoice"
	}
	rows := []core.Row{
		row.New(10).Add(text.NewCol(12, name, props.Text{Size: 14, Style: fontstyle.Bold, Top: 2})),
		row.New(6).Add(labelValue("Invoice #", strconv.Itoa(inv.InvoiceNumber))...),
	}
	if user.CompanyTaxID != "" {
		rows = append(rows, row.New(6).Add(labelValue("Tax ID", user.CompanyTaxID)...))
	}
	rows = append(rows,
		row.New(6).Add(labelValue("Date", FormatLongDate(inv.Date))...),
		row.New(6).Add(labelValue("Due Date", DueLabel(inv))...),
		row.New(6),
	)
	return rows
}

func block(title string, lines []string) core.Col {
	c := col.New(6).Add(text.New(title, props.Text{Size: 9, Style: fontstyle.Bold, Color: mutedColor}))
	top := 5.0
	for _, l := range lines {
		c.Add(text.New(l, props.Text{Size: 10, Top: top}))
		top += 5
	}
	return c
}

func fromLines(inv *models.Invoice, user *models.User) []string {
	name := user.CompanyName
	if name == "" {
		name = inv.FromName
	}
	if name == "" {
		name = user.FullName()
	}
	email := user.CompanyEmail
	if email == "" {
		email = inv.FromEmail
	}
	address := user.CompanyAddress
	if address == "" {
		address = inv.FromAddress
	}
	return compact(name, email, address)
}

func toLines(inv *models.Invoice) []string {
	c := inv.Client
	if c == nil {
		return []string{"-"}
	}
	lines := []string{c.Name}
	if p := c.PrimaryContact(); p != nil {
		lines = append(lines, "Attn: "+p.FullName())
	}
	if a := c.DefaultAddress(); a != nil {
		lines = append(lines, a.Lines()...)
	}
	lines = append(lines, c.Email)
	if c.TaxID != "" {
		lines = append(lines, "Tax ID: "+c.TaxID)
	}
	return compact(lines...)
}

func compact(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func partyRows(inv *models.Invoice, user *models.User) []core.Row {
	from := fromLines(inv, user)
	to := toLines(inv)
	height := float64(max(len(from), len(to))+1)*5 + 6
	return []core.Row{
		row.New(height).Add(block("FROM", from), block("TO", to)),
	}
}

func itemRows(inv *models.Invoice) []core.Row {
	head := props.Text{Size: 9, Style: fontstyle.Bold, Top: 2}
	headRight := head
	headRight.Align = align.Right
	cell := props.Text{Size: 10, Top: 2}
	cellRight := cell
	cellRight.Align = align.Right

	rows := []core.Row{
		row.New(8).Add(
			text.NewCol(6, "Description", head),
			text.NewCol(2, "Quantity", headRight),
			text.NewCol(2, "Rate", headRight),
			text.NewCol(2, "Amount", headRight),
		).WithStyle(&props.Cell{BackgroundColor: headerFill}),
		row.New(10).Add(
			text.NewCol(6, inv.InvoiceItemDescription, cell),
			text.NewCol(2, strconv.Itoa(inv.InvoiceItemQuantity), cellRight),
			text.NewCol(2, FormatCurrency(inv.InvoiceItemRate, inv.Currency), cellRight),
			text.NewCol(2, FormatCurrency(inv.Total, inv.Currency), cellRight),
		),
		row.New(4).Add(line.NewCol(12, props.Line{Color: mutedColor, Thickness: 0.2})),
		row.New(10).Add(
			col.New(8),
			text.NewCol(2, "Total", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
			text.NewCol(2, FormatCurrency(inv.Total, inv.Currency), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
		),
	}
	if inv.Note != "" {
		rows = append(rows,
			row.New(6).Add(text.NewCol(12, "Note", props.Text{Size: 9, Style: fontstyle.Bold, Color: mutedColor})),
			row.New(12).Add(text.NewCol(12, inv.Note, props.Text{Size: 10})),
		)
	}
	return rows
}

func bankRows(user *models.User) []core.Row {
	fields := []struct{ label, value string }{
		{"Bank", user.BankName},
		{"Account Name", user.BankAccountName},
		{"Account Number", user.BankAccountNumber},
		{"SWIFT", user.BankSwiftCode},
		{"IBAN", user.BankIBAN},
		{"Bank Address", user.BankAddress},
	}
	rows := []core.Row{
		row.New(6),
		row.New(8).Add(text.NewCol(12, "Payment Details", props.Text{Size: 11, Style: fontstyle.Bold})),
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		rows = append(rows, row.New(6).Add(labelValue(f.label, f.value)...))
	}
	return rows
}

func footerRows(now time.Time) []core.Row {
	small := props.Text{Size: 8, Align: align.Center, Color: mutedColor}
	return []core.Row{
		row.New(10),
		row.New(5).Add(text.NewCol(12, footerNote, small)),
		row.New(5).Add(text.NewCol(12, fmt.Sprintf("© %d InvoiceWeMaAd. All rights reserved.", now.Year()), small)),
	}
}
