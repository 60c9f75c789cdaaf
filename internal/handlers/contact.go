package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/internal/mailer"
	"github.com/diewo77/invoice-wemaad/validation"
)

// ContactHandler forwards public contact form submissions to the team inbox.
type ContactHandler struct {
	mail Mailer
	log  *zap.Logger
	to   string
}

func NewContactHandler(mail Mailer, log *zap.Logger, to string) *ContactHandler {
	return &ContactHandler{mail: mail, log: log, to: to}
}

// Submit sends the message and waits for the transport; a failed send is
// reported to the visitor.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := decode(w, r)
	if !ok {
		return
	}
	msg, v := validation.Unwrap(validation.ParseContact(p))
	if v != nil {
		invalid(w, r, v)
		return
	}
	vars := mailer.Vars{
		"firstName": msg.FirstName,
		"lastName":  msg.LastName,
		"email":     msg.Email,
		"message":   msg.Message,
	}
	if err := h.mail.SendEmail(r.Context(), h.to, mailer.ContactForm, vars); err != nil {
		logFailure(h.log, r, "send contact message", err)
		fail(w, r, http.StatusInternalServerError, "failed_send_message")
		return
	}
	done(w, r, "/")
}
