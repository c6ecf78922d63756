package notifier

import (
	"context"
	"fmt"
	"net/smtp"
)

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// EmailSender delivers alerts over SMTP.
type EmailSender struct {
	cfg  EmailConfig
	auth smtp.Auth
}

func NewEmailSender(cfg EmailConfig) *EmailSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &EmailSender{cfg: cfg, auth: auth}
}

// Send emails the message to the destination address.
func (s *EmailSender) Send(ctx context.Context, destination, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Queue position alert\r\n\r\n%s\r\n",
		s.cfg.From, destination, message)

	addr := s.cfg.Host + ":" + s.cfg.Port
	if err := smtp.SendMail(addr, s.auth, s.cfg.From, []string{destination}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send email to %s: %v", destination, err)
	}

	return nil
}
