package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

const (
	defaultFromName = "Support Desk"

	// alertCategory tags escalation mail so it can be filtered in the provider dashboard.
	alertCategory = "escalation"
)

// EmailSender delivers the email copy of an escalation alert.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a plain-text alert. Body carries the same JSON document
// that goes to the SNS topic.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

type sendgridAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridSender struct {
	client    sendgridAPI
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil when no API key is configured, so callers
// fall back to SNS-only escalation.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	alert := mail.NewV3MailInit(
		mail.NewEmail(s.fromName, s.fromEmail),
		msg.Subject,
		mail.NewEmail("", msg.To),
		mail.NewContent("text/plain", msg.Body),
	)
	alert.AddCategories(alertCategory)

	resp, err := s.client.SendWithContext(ctx, alert)
	if err != nil {
		return fmt.Errorf("notify: sendgrid alert to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: sendgrid alert to %s: status %d: %s", msg.To, resp.StatusCode, resp.Body)
	}

	s.logger.Info("escalation email sent", "provider", "sendgrid", "to", msg.To, "status", resp.StatusCode)
	return nil
}
