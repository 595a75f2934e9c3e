// Package mail delivers account email over SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/pkg/config"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// sender is satisfied by *gomail.Dialer
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends plain-text messages through an SMTP relay
type SMTPMailer struct {
	dialer sender
	from   string
}

// NewSMTPMailer creates a mailer from configuration
func NewSMTPMailer(cfg *config.MailConfig) providers.Mailer {
	return newSMTPMailer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg)
}

func newSMTPMailer(dialer sender, cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: dialer,
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
	}
}

// Send delivers msg; the context is only checked before dialing
func (m *SMTPMailer) Send(ctx context.Context, msg providers.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(message); err != nil {
		return apperrors.NewExternalError("Email could not be sent", err)
	}

	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}
