package mail

import (
	"context"

	sendgrid "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"safecommute/internal/common"
)

type SendGridMailer struct {
	client *sendgrid.Client
	from   string
}

func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (s *SendGridMailer) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", s.from))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return common.Errorf("SendGridMailer.Send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return common.Errorf("SendGridMailer.Send: sendgrid returned status %d: %s: %w",
			resp.StatusCode, resp.Body, common.ErrUpstream)
	}
	return nil
}
