package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer delivers HTML mail to a single recipient.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay with plain auth.
type SMTPMailer struct {
	host     string
	port     string
	sender   string
	password string
	logger   zerolog.Logger
}

// NewSMTPMailer constructs an SMTP-backed mailer.
func NewSMTPMailer(host, port, sender, password string, logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
		logger:   logger.With().Str("component", "smtp_mailer").Logger(),
	}
}

// Send delivers a single HTML message.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n")
	msg.WriteString(fmt.Sprintf("From: CRM System <%s>\r\n", m.sender))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n\r\n", subject))
	msg.WriteString(htmlBody)

	auth := smtp.PlainAuth("", m.sender, m.password, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.sender, []string{to}, []byte(msg.String())); err != nil {
		m.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
