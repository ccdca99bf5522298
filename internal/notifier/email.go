package notifier

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/pagewatch-dev/pagewatch/internal/config"
)

// EmailSender is the outbound email transport capability.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type resendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender builds the production email transport on top of the
// Resend API.
func NewResendSender(cfg config.EmailConfig) EmailSender {
	return &resendSender{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From,
	}
}

func (s *resendSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
