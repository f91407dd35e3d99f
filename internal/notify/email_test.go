package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

type fakeSendGrid struct {
	sent   *mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = email
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	if sender := NewSendGridSender(SendGridConfig{FromEmail: "test@example.com"}, nil); sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "test@example.com"}, nil)
	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != defaultFromName {
		t.Errorf("expected default from name %q, got %q", defaultFromName, sender.fromName)
	}
}

func TestSendGridSender_Send(t *testing.T) {
	fake := &fakeSendGrid{status: 202}
	sender := &SendGridSender{client: fake, fromEmail: "desk@example.com", fromName: "Desk", logger: logging.Discard()}

	err := sender.Send(context.Background(), EmailMessage{To: "oncall@example.com", Subject: "EMERGENCY ALERT - high severity", Body: "{}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.sent == nil || fake.sent.Subject != "EMERGENCY ALERT - high severity" {
		t.Fatalf("expected message sent with subject, got %+v", fake.sent)
	}
	if len(fake.sent.Content) != 1 || fake.sent.Content[0].Type != "text/plain" || fake.sent.Content[0].Value != "{}" {
		t.Fatalf("expected a single plain-text body, got %+v", fake.sent.Content)
	}
	if len(fake.sent.Categories) != 1 || fake.sent.Categories[0] != alertCategory {
		t.Fatalf("expected escalation category, got %v", fake.sent.Categories)
	}
}

func TestSendGridSender_SendErrorStatus(t *testing.T) {
	sender := &SendGridSender{client: &fakeSendGrid{status: 401}, logger: logging.Discard()}
	if err := sender.Send(context.Background(), EmailMessage{To: "x@example.com"}); err == nil {
		t.Fatal("expected error for 4xx status")
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	if err := sender.Send(context.Background(), EmailMessage{To: "recipient@example.com"}); err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestNewSESSender_NilWithoutSender(t *testing.T) {
	if NewSESSender(&fakeSES{}, SESConfig{}, nil) != nil {
		t.Error("expected nil sender without from address")
	}
	if NewSESSender(nil, SESConfig{FromEmail: "a@example.com"}, nil) != nil {
		t.Error("expected nil sender without client")
	}
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSender(fake, SESConfig{FromEmail: "desk@example.com"}, logging.Discard())

	if err := sender.Send(context.Background(), EmailMessage{To: "oncall@example.com", Subject: "alert", Body: "body"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aws.ToString(fake.input.FromEmailAddress); got != "Support Desk <desk@example.com>" {
		t.Fatalf("unexpected from address %q", got)
	}
	if fake.input.Content.Simple.Body.Text == nil || fake.input.Content.Simple.Body.Html != nil {
		t.Fatal("expected text body only")
	}
	if fake.input.Destination.ToAddresses[0] != "oncall@example.com" {
		t.Fatalf("unexpected recipients %v", fake.input.Destination.ToAddresses)
	}
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("sandbox")}, SESConfig{FromEmail: "desk@example.com"}, logging.Discard())
	if err := sender.Send(context.Background(), EmailMessage{To: "x@example.com"}); err == nil {
		t.Fatal("expected error")
	}
}
