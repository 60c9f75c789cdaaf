package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridTransport struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridTransport(apiKey, from, fromName string) *SendGridTransport {
	return &SendGridTransport{client: sendgrid.NewSendClient(apiKey), from: from, fromName: fromName}
}

func (t *SendGridTransport) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(t.fromName, t.from))
	m.Subject = msg.Subject
	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	m.AddCategories(string(msg.Template))

	resp, err := t.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
