package services

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

// Mailer sends transactional mail over SMTP. With no host configured it
// logs the message instead, which keeps local development working without
// a mail server.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewMailer(host, port, username, password, from string) *Mailer {
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	if m.Host == "" {
		log.Info().Str("to", to).Str("subject", subject).Msg("SMTP not configured, skipping mail delivery")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s", m.From, to, subject, body)

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)

	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// SendWelcome greets a newly registered user
func (m *Mailer) SendWelcome(to, name string) error {
	body := fmt.Sprintf(`Hi %s,

Welcome to Academia AI! Your account is ready.

Generate a curriculum on any topic, work through the lessons at your own
pace, and use the paraphraser to polish your writing.

Happy learning,
The Academia AI Team`, name)

	return m.Send(to, "Welcome to Academia AI", body)
}

// SendPasswordReset mails a single-use reset link
func (m *Mailer) SendPasswordReset(to, name, resetURL string) error {
	body := fmt.Sprintf(`Hi %s,

We received a request to reset your password. Use the link below within
one hour:

%s

If you didn't request this, you can safely ignore this message.

The Academia AI Team`, name, resetURL)

	return m.Send(to, "Reset your Academia AI password", body)
}

// SendCurriculumReady notifies a user that their generated curriculum is available
func (m *Mailer) SendCurriculumReady(to, name, topic string) error {
	body := fmt.Sprintf(`Hi %s,

Your curriculum on "%s" has been generated and is ready in your dashboard.

The Academia AI Team`, name, topic)

	return m.Send(to, fmt.Sprintf("Your %s curriculum is ready", topic), body)
}
