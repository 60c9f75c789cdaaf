// Package mailer renders the application's transactional emails and hands
// them to a Transport. Sends are either awaited (SendEmail) or detached from
// the request that triggered them (Notify).
package mailer

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/diewo77/invoice-wemaad/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateName identifies one of the embedded email templates.
type TemplateName string

const (
	NewInvoice      TemplateName = "newInvoice"
	UpdatedInvoice  TemplateName = "updatedInvoice"
	ReminderInvoice TemplateName = "reminderInvoice"
	ContactForm     TemplateName = "contactForm"
	MagicLink       TemplateName = "magicLink"
)

var subjects = map[TemplateName]string{
	NewInvoice:      "New Invoice - InvoiceWeMaAd",
	UpdatedInvoice:  "Invoice Updated - InvoiceWeMaAd",
	ReminderInvoice: "Invoice Payment Reminder - InvoiceWeMaAd",
	ContactForm:     "New Contact Form Submission - InvoiceWeMaAd",
	MagicLink:       "Sign in to InvoiceWeMaAd",
}

// ErrUnknownTemplate is returned for a template name with no subject.
var ErrUnknownTemplate = errors.New("mailer: unknown template")

// Subject returns the fixed subject line for name.
func Subject(name TemplateName) (string, error) {
	s, ok := subjects[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return s, nil
}

// Vars is the variable bag a template is rendered with.
type Vars map[string]any

// Message is a rendered email ready for a transport.
type Message struct {
	To       string
	Subject  string
	HTML     string
	Template TemplateName
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// NotifyTimeout bounds a detached send.
const NotifyTimeout = 30 * time.Second

type Dispatcher struct {
	transport Transport
	views     *view.Renderer
	log       *zap.Logger
	wg        sync.WaitGroup
}

func New(transport Transport, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		transport: transport,
		views:     view.New(mustSub(templateFS, "templates")),
		log:       log,
	}
}

// Render produces the message for name without sending it.
func (d *Dispatcher) Render(to string, name TemplateName, vars Vars) (Message, error) {
	subject, err := Subject(name)
	if err != nil {
		return Message{}, err
	}
	body, err := d.views.RenderString("en", string(name)+".html", maps.Clone(vars))
	if err != nil {
		return Message{}, fmt.Errorf("mailer: render %s: %w", name, err)
	}
	return Message{To: to, Subject: subject, HTML: body, Template: name}, nil
}

// SendEmail renders and sends name to to, returning the transport's error.
func (d *Dispatcher) SendEmail(ctx context.Context, to string, name TemplateName, vars Vars) error {
	msg, err := d.Render(to, name, vars)
	if err != nil {
		return err
	}
	if err := d.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send %s: %w", name, err)
	}
	d.log.Info("email sent", zap.String("template", string(name)), zap.String("to", to))
	return nil
}

// Notify sends in the background. Failures are logged and reported, never
// returned; the caller's request may finish before the send does.
func (d *Dispatcher) Notify(ctx context.Context, to string, name TemplateName, vars Vars) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.log.Error("notification panic", zap.String("template", string(name)), zap.Any("panic", rec))
			}
		}()
		sendCtx, cancel := context.WithTimeout(ctx, NotifyTimeout)
		defer cancel()
		if err := d.SendEmail(sendCtx, to, name, vars); err != nil {
			d.log.Warn("notification failed", zap.String("template", string(name)), zap.String("to", to), zap.Error(err))
			sentry.CaptureException(err)
		}
	}()
}

// Wait blocks until every Notify goroutine has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
