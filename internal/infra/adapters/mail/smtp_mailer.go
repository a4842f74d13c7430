package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/AlexJaimeH/narra-sub000/internal/config"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/ports/adapter"
)

// Ensure implementation satisfies the port.
var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers transactional mail over SMTP.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPMailer) Deliver(ctx context.Context, msg *adapter.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	from := msg.From
	if from == "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromAddress)
	}
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}
