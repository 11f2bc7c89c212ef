// Package mailer dispatches transactional email over SMTP. The core only
// depends on a boolean success flag: unconfigured or disabled mail is a
// silent no-op returning false.
package mailer

import (
	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/imoview/realty-crm/internal/core/domain"
)

// ConfigSource yields the SMTP settings to use for the next dispatch. SMTP
// lives in the mutable global settings, so it is read per send instead of
// being fixed at construction.
type ConfigSource func() domain.SMTPConfig

// SMTPMailer sends through the SMTP settings held in SystemSettings.
type SMTPMailer struct {
	source ConfigSource
	log    zerolog.Logger
}

func NewSMTPMailer(source ConfigSource, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{source: source, log: log}
}

// Send delivers one message, reporting success as a bare boolean.
func (m *SMTPMailer) Send(to, subject, body string) bool {
	if m == nil || m.source == nil || to == "" {
		return false
	}
	cfg := m.source()
	if !cfg.Enabled || cfg.Host == "" {
		return false
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	port := cfg.Port
	if port == 0 {
		port = 587
	}
	dialer := gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		m.log.Warn().Err(err).Str("to", to).Msg("email dispatch failed")
		return false
	}
	return true
}
