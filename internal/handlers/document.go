package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/httpx"
	"github.com/diewo77/invoice-wemaad/i18n"
	"github.com/diewo77/invoice-wemaad/internal/models"
	"github.com/diewo77/invoice-wemaad/internal/pdf"
	"github.com/diewo77/invoice-wemaad/internal/services"
)

// DocumentHandler serves invoice PDFs.
type DocumentHandler struct {
	invoices *services.InvoiceService
	renderer *pdf.Renderer
	log      *zap.Logger
}

func NewDocumentHandler(invoices *services.InvoiceService, renderer *pdf.Renderer, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{invoices: invoices, renderer: renderer, log: log}
}

// Download serves an owned invoice as an attachment.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lang(r), "invoice_not_found"))
		return
	}
	inv, err := h.invoices.ForDocument(r.Context(), userID, id)
	h.serve(w, r, inv, err, "attachment")
}

// Public serves an invoice inline by its public id. The id is the only
// credential.
func (h *DocumentHandler) Public(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.ByPublicID(r.Context(), r.PathValue("publicId"))
	h.serve(w, r, inv, err, "inline")
}

func (h *DocumentHandler) serve(w http.ResponseWriter, r *http.Request, inv *models.Invoice, err error, disposition string) {
	if errors.Is(err, services.ErrNotFound) {
		httpx.StatusError(w, http.StatusNotFound, i18n.T(lang(r), "invoice_not_found"))
		return
	}
	if err != nil {
		logFailure(h.log, r, "load invoice document", err)
		httpx.StatusError(w, http.StatusInternalServerError, i18n.T(lang(r), "failed_render_pdf"))
		return
	}
	data, err := h.renderer.Render(r.Context(), inv)
	if err != nil {
		logFailure(h.log, r, "render invoice pdf", err, zap.Uint("invoice_id", inv.ID))
		httpx.StatusError(w, http.StatusInternalServerError, i18n.T(lang(r), "failed_render_pdf"))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=\"invoice-%d.pdf\"", disposition, inv.InvoiceNumber))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
