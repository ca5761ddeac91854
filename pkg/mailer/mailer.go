// Package mailer sends transactional mail over SMTP.
package mailer

import (
	"fmt"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

// Config holds SMTP connection settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Message is one outbound mail
type Message struct {
	To      string
	Subject string
	Body    string // HTML
}

// Mailer delivers messages through an SMTP server
type Mailer struct {
	cfg Config
}

// New creates a new Mailer
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send connects to the SMTP server and delivers one message. A fresh
// connection per message keeps the consumer loop simple; volume here is one
// mail per confirmed booking.
func (m *Mailer) Send(msg Message) error {
	server := mail.NewSMTPClient()
	server.Host = m.cfg.Host
	server.Port = m.cfg.Port
	server.Username = m.cfg.Username
	server.Password = m.cfg.Password
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	client, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	email := mail.NewMSG()
	email.SetFrom(m.cfg.From).AddTo(msg.To).SetSubject(msg.Subject)
	email.SetBody(mail.TextHTML, msg.Body)

	if email.Error != nil {
		return fmt.Errorf("failed to build message: %w", email.Error)
	}

	if err := email.Send(client); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}
