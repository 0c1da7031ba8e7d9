package services

import (
	"fmt"
	"net/smtp"

	"github.com/highgoal215/socialsale-backend/internal/config"

	"github.com/sirupsen/logrus"
)

// EmailService sends notification emails over SMTP. When no SMTP host is
// configured the service is a no-op, which keeps local development quiet.
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (es *EmailService) Enabled() bool {
	return es.host != ""
}

func (es *EmailService) Send(to, subject, body string) error {
	if !es.Enabled() {
		logrus.WithField("to", to).Debug("SMTP not configured, skipping email")
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		es.from, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%d", es.host, es.port)
	auth := smtp.PlainAuth("", es.username, es.password, es.host)

	if err := smtp.SendMail(addr, auth, es.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
