package client

import (
	"fmt"
	"net/smtp"
	"strings"

	"digital-goods-store/internal/config"
)

// Mailer sends transactional mail (OTP verification, password reset).
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailerImpl struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(cfg *config.SMTP) Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &smtpMailerImpl{
		addr: cfg.Host + ":" + cfg.Port,
		auth: auth,
		from: cfg.From,
	}
}

func (m *smtpMailerImpl) Send(to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
