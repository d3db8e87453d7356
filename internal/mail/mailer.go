package mail

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/spec-kit/lifebridge/internal/config"
)

// ErrNotConfigured is returned when SMTP credentials are absent.
var ErrNotConfigured = errors.New("email transport not configured")

// Mailer sends a single outbound email. Delivery is best-effort and
// never retried.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	cfg            config.MailConfig
	frontendOrigin string
	logger         *zap.Logger
}

// NewSMTPMailer constructs the mailer.
func NewSMTPMailer(cfg config.MailConfig, frontendOrigin string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, frontendOrigin: frontendOrigin, logger: logger}
}

// Send validates inputs, then dials the relay and delivers one message.
// A plain-text body containing a donation link also carries an HTML
// variant with a call-to-action button.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return errors.New("missing required email parameters")
	}
	if m.cfg.Username == "" || m.cfg.Password == "" {
		return ErrNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if html := m.htmlVariant(body); html != "" {
		msg.AddAlternative("text/html", html)
	}

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		m.logger.Error("email delivery failed", zap.String("to", to), zap.Error(err))
		return err
	}

	m.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// htmlVariant renders a styled alternative when the body links to the
// donate page; other mail stays plain text.
func (m *SMTPMailer) htmlVariant(body string) string {
	donatePrefix := m.frontendOrigin + "/donate/"
	if !strings.Contains(body, donatePrefix) {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	sb.WriteString(`<h2 style="color: #e11d48;">Blood Request Alert</h2>`)
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "http") {
			fmt.Fprintf(&sb, `<div style="text-align: center; margin: 20px 0;">`+
				`<a href="%s" style="background-color: #e11d48; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">`+
				`Donate Blood Now</a></div>`, line)
			continue
		}
		fmt.Fprintf(&sb, `<p style="margin: 10px 0;">%s</p>`, line)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}
