package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/i18n"
	"github.com/diewo77/invoice-wemaad/internal/mailer"
	"github.com/diewo77/invoice-wemaad/internal/models"
	"github.com/diewo77/invoice-wemaad/internal/pdf"
	"github.com/diewo77/invoice-wemaad/internal/services"
	"github.com/diewo77/invoice-wemaad/validation"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
	mail     Mailer
	log      *zap.Logger
	baseURL  string
}

func NewInvoiceHandler(invoices *services.InvoiceService, mail Mailer, log *zap.Logger, baseURL string) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, mail: mail, log: log, baseURL: baseURL}
}

// InvoiceLink is the public PDF address sent to clients.
func InvoiceLink(baseURL string, inv *models.Invoice) string {
	return baseURL + "/api/invoice/" + inv.PublicID
}

// invoiceVars is the variable bag shared by the three invoice emails.
func invoiceVars(baseURL string, inv *models.Invoice, contact *models.ContactPerson) mailer.Vars {
	return mailer.Vars{
		"clientName":     contact.FullName(),
		"invoiceNumber":  inv.InvoiceNumber,
		"invoiceDueDate": pdf.FormatLongDate(inv.DueAt()),
		"invoiceAmount":  pdf.FormatCurrency(inv.Total, inv.Currency),
		"invoiceLink":    InvoiceLink(baseURL, inv),
	}
}

// notify sends name to the invoice's primary contact without waiting. A
// missing contact or a failed send is only logged.
func (h *InvoiceHandler) notify(ctx context.Context, userID, invoiceID uint, name mailer.TemplateName) {
	inv, contact, err := h.invoices.Recipient(ctx, userID, invoiceID)
	if err != nil {
		h.log.Warn("invoice notification skipped",
			zap.Uint("invoice_id", invoiceID),
			zap.String("template", string(name)),
			zap.Error(err),
		)
		return
	}
	h.mail.Notify(ctx, contact.Email, name, invoiceVars(h.baseURL, inv, contact))
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	invs, err := h.invoices.List(r.Context(), userID)
	if err != nil {
		logFailure(h.log, r, "list invoices", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": len(invs)})
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lang(r), "invoice_not_found"))
		return
	}
	inv, err := h.invoices.Get(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lang(r), "invoice_not_found"))
		return
	}
	if err != nil {
		logFailure(h.log, r, "get invoice", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create persists a new invoice, then notifies the client's primary contact
// in the background.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := decode(w, r)
	if !ok {
		return
	}
	in, v := validation.Unwrap(validation.ParseInvoice(p))
	if v != nil {
		invalid(w, r, v)
		return
	}
	inv, err := h.invoices.Create(r.Context(), userID, in)
	if errors.Is(err, services.ErrClientNotFound) {
		fail(w, r, http.StatusNotFound, "client_not_found")
		return
	}
	if err != nil {
		logFailure(h.log, r, "create invoice", err)
		fail(w, r, http.StatusInternalServerError, "failed_create_invoice")
		return
	}
	h.log.Info("invoice created", zap.Uint("invoice_id", inv.ID), zap.Uint("user_id", userID))
	h.notify(r.Context(), userID, inv.ID, mailer.NewInvoice)
	done(w, r, "/invoices")
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "invoice_not_found")
	if !ok {
		return
	}
	p, ok := decode(w, r)
	if !ok {
		return
	}
	in, v := validation.Unwrap(validation.ParseInvoice(p))
	if v != nil {
		invalid(w, r, v)
		return
	}
	inv, err := h.invoices.Update(r.Context(), userID, id, in)
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		fail(w, r, http.StatusNotFound, "invoice_not_found")
		return
	case errors.Is(err, services.ErrClientNotFound):
		fail(w, r, http.StatusNotFound, "client_not_found")
		return
	case err != nil:
		logFailure(h.log, r, "update invoice", err, zap.Uint("invoice_id", id))
		fail(w, r, http.StatusInternalServerError, "failed_update_invoice")
		return
	}
	h.notify(r.Context(), userID, inv.ID, mailer.UpdatedInvoice)
	done(w, r, "/invoices/"+strconv.FormatUint(uint64(inv.ID), 10))
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "invoice_not_found")
	if !ok {
		return
	}
	err := h.invoices.Delete(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) {
		fail(w, r, http.StatusNotFound, "invoice_not_found")
		return
	}
	if err != nil {
		logFailure(h.log, r, "delete invoice", err, zap.Uint("invoice_id", id))
		fail(w, r, http.StatusInternalServerError, "failed_delete_invoice")
		return
	}
	done(w, r, "/invoices")
}

// MarkPaid is idempotent: a paid invoice stays paid and keeps its payment date.
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "invoice_not_found")
	if !ok {
		return
	}
	_, err := h.invoices.MarkPaid(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) {
		fail(w, r, http.StatusNotFound, "invoice_not_found")
		return
	}
	if err != nil {
		logFailure(h.log, r, "mark invoice paid", err, zap.Uint("invoice_id", id))
		fail(w, r, http.StatusInternalServerError, "failed_mark_paid")
		return
	}
	done(w, r, "/invoices")
}

// Remind sends the payment reminder and waits for the transport.
func (h *InvoiceHandler) Remind(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	lng := lang(r)
	id, ok := httpx.PathID(r, "invoiceId")
	if !ok {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lng, "invoice_not_found"))
		return
	}
	inv, contact, err := h.invoices.Recipient(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrNoPrimaryContact) {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lng, "invoice_not_found"))
		return
	}
	if err != nil {
		logFailure(h.log, r, "load reminder recipient", err, zap.Uint("invoice_id", id))
		httpx.StatusError(w, http.StatusInternalServerError, i18n.T(lng, "failed_send_reminder"))
		return
	}
	if err := h.mail.SendEmail(r.Context(), contact.Email, mailer.ReminderInvoice, invoiceVars(h.baseURL, inv, contact)); err != nil {
		logFailure(h.log, r, "send reminder", err, zap.Uint("invoice_id", id))
		httpx.StatusError(w, http.StatusInternalServerError, i18n.T(lng, "failed_send_reminder"))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
