package services

import (
	"context"

	gomail "gopkg.in/gomail.v2"
)

// EmailSender is the outbound email transport. No delivery id is returned;
// a nil error means the relay accepted the message.
type EmailSender interface {
	Send(ctx context.Context, from, to, subject, htmlBody string) error
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, from, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	return s.dialer.DialAndSend(m)
}
