package infra

import (
	"fmt"
	"net/smtp"

	"messpos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends receipts over SMTP.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	from     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     fmt.Sprintf("%s <%s>", cfg.RestaurantName, cfg.SMTPUser),
	}
}

// Enabled is false when no SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// SendReceipt mails a PDF receipt to a customer.
func (m *Mailer) SendReceipt(to, subject, body, pdfPath string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: smtp not configured")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
