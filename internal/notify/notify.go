// Package notify delivers escalation alerts to on-call channels.
package notify

import (
	"context"
	"errors"

	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// Notifier publishes a message to a topic.
type Notifier interface {
	Publish(ctx context.Context, topic, subject, body string) error
}

// EmailNotifier publishes through the wrapped notifier and also emails the same alert to one address.
type EmailNotifier struct {
	next   Notifier
	sender EmailSender
	to     string
	logger *logging.Logger
}

var _ Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier returns next unchanged when sender or recipient is missing.
func NewEmailNotifier(next Notifier, sender EmailSender, to string, logger *logging.Logger) Notifier {
	if next == nil {
		panic("notify: notifier cannot be nil")
	}
	if sender == nil || to == "" {
		return next
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &EmailNotifier{next: next, sender: sender, to: to, logger: logger}
}

// Publish attempts both deliveries and returns their combined error.
func (n *EmailNotifier) Publish(ctx context.Context, topic, subject, body string) error {
	pubErr := n.next.Publish(ctx, topic, subject, body)
	mailErr := n.sender.Send(ctx, EmailMessage{To: n.to, Subject: subject, Body: body})
	if mailErr != nil {
		n.logger.Warn("escalation email failed", "error", mailErr, "to", n.to)
	}
	return errors.Join(pubErr, mailErr)
}
