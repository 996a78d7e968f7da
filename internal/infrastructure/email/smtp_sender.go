package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"shop-kita.backend/internal/config"
)

// SMTPSender delivers mail through a plain SMTP relay
type SMTPSender struct {
	cfg config.SMTPConfig
}

var smtpSendMail = smtp.SendMail

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers a multipart message with text and HTML alternatives
func (s *SMTPSender) Send(ctx context.Context, to, subject, html, text string) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	msg := buildMessage(s.cfg.From, to, subject, html, text)
	if err := smtpSendMail(s.cfg.Addr(), auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

const multipartBoundary = "shop-kita-alt"

func buildMessage(from, to, subject, html, text string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=" + multipartBoundary + "\r\n")
	b.WriteString("\r\n")

	b.WriteString("--" + multipartBoundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text + "\r\n")

	b.WriteString("--" + multipartBoundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html + "\r\n")

	b.WriteString("--" + multipartBoundary + "--\r\n")
	return []byte(b.String())
}
