// Package mailer delivers transactional email. The only message the
// service sends today is the password reset code.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Mailer sends transactional email to a single recipient.
type Mailer interface {
	SendPasswordResetCode(ctx context.Context, to, code string) error
}

// SMTPConfig holds the SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail over SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a mailer for the given SMTP settings.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendPasswordResetCode emails the reset code to the user.
func (m *SMTPMailer) SendPasswordResetCode(ctx context.Context, to, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set mail recipient: %w", err)
	}

	msg.Subject("Password reset code")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your password reset code is %s.\n\nThe code expires in 24 hours. If you did not request a password reset, ignore this email.\n",
		code,
	))

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}
