package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"gopkg.in/gomail.v2"
)

// Message is one outbound transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a Message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures SMTPSender. The defaults point at the Resend SMTP
// relay, where Username is "resend" and Password is the API key.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is configured to deliver mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Password != "" && c.From != ""
}

// SMTPSender sends mail through an SMTP relay with gomail.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	logger *slog.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("email sent", slog.String("subject", msg.Subject))
	return nil
}

// NoopSender discards every message. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) Send(context.Context, Message) error { return nil }

const resetSubject = "Reset Your Q63 Tracker Password"

// ResetLink builds <origin>/<entry>#reset-confirm?token=<token>.
func ResetLink(origin, entry, token string) string {
	origin = strings.TrimRight(origin, "/")
	entry = strings.TrimLeft(entry, "/")
	return origin + "/" + entry + "#reset-confirm?token=" + url.QueryEscape(token)
}

// ResetMessage renders the password reset email for to with the given link.
func ResetMessage(to, link string) Message {
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto; background: #000; color: #fff; padding: 40px; border-radius: 8px;">
  <h1 style="color: #ffcc00; font-size: 24px; margin-bottom: 20px;">UGLY DOJO</h1>
  <p style="color: #ccc; margin-bottom: 20px;">You requested a password reset for your Q63 Tracker account.</p>
  <a href="%s" style="display: inline-block; background: #ffcc00; color: #000; padding: 12px 24px; text-decoration: none; font-weight: bold; border-radius: 4px;">Reset Password</a>
  <p style="color: #666; font-size: 12px; margin-top: 30px;">This link expires in 1 hour. If you didn't request this, ignore this email.</p>
</div>`, html.EscapeString(link))

	return Message{
		To:      to,
		Subject: resetSubject,
		HTML:    body,
	}
}
