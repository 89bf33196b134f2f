// Package mail is the outbound email transport behind the notification
// boundary. Sends are best-effort: callers log failures and move on.
package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/config"
)

// Sender delivers a rendered email to one or more recipients.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	logger *zap.Logger
}

// NewSendGridMailer builds the mailer. A missing API key is tolerated so the
// service can run without outbound email in development; sends then fail
// and are logged by the notification layer.
func NewSendGridMailer(cfg config.MailConfig, logger *zap.Logger) *SendGridMailer {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY not provided; outbound email disabled")
	}
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

// Send delivers the message to every recipient in one API call.
func (m *SendGridMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	message := sgmail.NewV3Mail()
	message.SetFrom(m.from)
	message.Subject = subject

	personalization := sgmail.NewPersonalization()
	for _, recipient := range to {
		personalization.AddTos(sgmail.NewEmail("", recipient))
	}
	message.AddPersonalizations(personalization)
	message.AddContent(sgmail.NewContent("text/html", htmlBody))

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}

	m.logger.Debug("email sent",
		zap.Strings("to", to),
		zap.String("subject", subject))
	return nil
}
