// Package email dispatches contact-form submissions to the site owner.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/devfolio/portfolio-backend/internal/config"
)

// Message is a contact-form submission ready for delivery.
type Message struct {
	Name    string
	ReplyTo string
	Subject string
	Body    string
}

// Sender delivers a contact message to the configured recipient.
type Sender interface {
	Send(msg Message) error
}

// NewSender builds a Sender from config. Unknown providers fall back to the
// log sender rather than failing startup; a portfolio site should stay up
// even when mail is misconfigured.
func NewSender(cfg config.EmailConfig, logger *slog.Logger) Sender {
	switch cfg.Provider {
	case "smtp":
		return &smtpSender{cfg: cfg}
	case "log", "":
		return &logSender{logger: logger, recipient: cfg.Recipient}
	default:
		logger.Warn("unknown email provider, falling back to log sender", "provider", cfg.Provider)
		return &logSender{logger: logger, recipient: cfg.Recipient}
	}
}

// smtpSender delivers mail over authenticated SMTP.
type smtpSender struct {
	cfg config.EmailConfig
}

func (s *smtpSender) Send(msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTP.Host, s.cfg.SMTP.Port)

	var auth smtp.Auth
	if s.cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTP.Username, s.cfg.SMTP.Password, s.cfg.SMTP.Host)
	}

	raw := buildMIME(s.cfg.SMTP.From, s.cfg.Recipient, msg)
	if err := smtp.SendMail(addr, auth, s.cfg.SMTP.From, []string{s.cfg.Recipient}, raw); err != nil {
		return fmt.Errorf("failed to send contact email: %w", err)
	}
	return nil
}

// buildMIME assembles the raw message. Reply-To carries the visitor's
// address so the owner can answer directly from their mail client.
func buildMIME(from, to string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s <%s>\r\n", sanitizeHeader(msg.Name), sanitizeHeader(msg.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// sanitizeHeader strips CR/LF so user-supplied values cannot inject headers.
func sanitizeHeader(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return strings.TrimSpace(v)
}

// logSender writes the message to the application log. Used in development
// and as the fallback when no provider is configured.
type logSender struct {
	logger    *slog.Logger
	recipient string
}

func (s *logSender) Send(msg Message) error {
	s.logger.Info("contact email (log provider)",
		"to", s.recipient,
		"reply_to", msg.ReplyTo,
		"name", msg.Name,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
