package report

import (
	"fmt"
	"net/smtp"

	"DataScope/src/config"

	"github.com/jordan-wright/email"
)

// Mailer sends report mails over plain-auth SMTP.
type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(recipients []string, subject, body, attachment string) error {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = recipients
	e.Subject = subject
	e.Text = []byte(body)
	if attachment != "" {
		if _, err := e.AttachFile(attachment); err != nil {
			return fmt.Errorf("attach %s: %w", attachment, err)
		}
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return e.Send(addr, auth)
}
