// Package mailer wraps the Resend API for outbound notification email.
package mailer

import (
	"context"
	"fmt"

	"github.com/brightclass/brightclass-backend/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Mailer sends a single HTML email. Implementations must be safe for
// concurrent use; callers treat failures as non-fatal.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendMailer implements Mailer on top of the Resend API. When no API key
// is configured it degrades to a logged no-op so local development works
// without credentials.
type ResendMailer struct {
	client *resend.Client
	from   string
	log    zerolog.Logger
}

// New creates a ResendMailer from config.
func New(cfg *config.Config, log zerolog.Logger) *ResendMailer {
	m := &ResendMailer{
		from: cfg.EmailFrom,
		log:  log.With().Str("component", "mailer").Logger(),
	}
	if cfg.ResendAPIKey != "" {
		m.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return m
}

// Send dispatches one email. Returns an error for the caller to log;
// callers never fail their own operation on it.
func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.client == nil {
		m.log.Debug().Str("to", to).Str("subject", subject).Msg("Email disabled, skipping send")
		return nil
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
