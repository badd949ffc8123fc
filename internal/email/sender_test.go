package email

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/devfolio/portfolio-backend/internal/config"
)

func TestNewSenderSelectsProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, ok := NewSender(config.EmailConfig{Provider: "smtp"}, logger).(*smtpSender); !ok {
		t.Error("provider smtp did not produce smtpSender")
	}
	if _, ok := NewSender(config.EmailConfig{Provider: "log"}, logger).(*logSender); !ok {
		t.Error("provider log did not produce logSender")
	}
	if _, ok := NewSender(config.EmailConfig{Provider: ""}, logger).(*logSender); !ok {
		t.Error("empty provider did not fall back to logSender")
	}
	if _, ok := NewSender(config.EmailConfig{Provider: "sendgrid"}, logger).(*logSender); !ok {
		t.Error("unknown provider did not fall back to logSender")
	}
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("site@example.com", "owner@example.com", Message{
		Name:    "Visitor",
		ReplyTo: "visitor@example.com",
		Subject: "Hello",
		Body:    "Nice site.",
	}))

	for _, want := range []string{
		"From: site@example.com\r\n",
		"To: owner@example.com\r\n",
		"Reply-To: Visitor <visitor@example.com>\r\n",
		"Subject: Hello\r\n",
		"\r\n\r\nNice site.",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q:\n%s", want, raw)
		}
	}
}

func TestBuildMIMEStripsHeaderInjection(t *testing.T) {
	raw := string(buildMIME("site@example.com", "owner@example.com", Message{
		Name:    "Evil\r\nBcc: spam@example.com",
		ReplyTo: "visitor@example.com",
		Subject: "Hi\nX-Injected: 1",
		Body:    "body",
	}))

	if strings.Contains(raw, "Bcc:") {
		t.Errorf("injected Bcc header survived:\n%s", raw)
	}
	if strings.Contains(raw, "X-Injected:") {
		t.Errorf("injected header survived:\n%s", raw)
	}
}

func TestLogSenderWritesToLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	sender := NewSender(config.EmailConfig{Provider: "log", Recipient: "owner@example.com"}, logger)
	if err := sender.Send(Message{Name: "Visitor", ReplyTo: "visitor@example.com", Subject: "Hi", Body: "b"}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if !strings.Contains(buf.String(), "owner@example.com") {
		t.Errorf("log output missing recipient: %s", buf.String())
	}
}
