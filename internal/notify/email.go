package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSink mails reminders to the account owner. Optional; only wired
// when SMTP settings are configured.
type EmailSink struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewEmailSink(host string, port int, user, password, from, to string) *EmailSink {
	return &EmailSink{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		to:     to,
	}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(n Notification) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	subject := fmt.Sprintf("Reminder: %s", n.Title)
	if n.SnoozeCount > 0 {
		subject = fmt.Sprintf("Reminder (snoozed x%d): %s", n.SnoozeCount, n.Title)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", fmt.Sprintf("%s\n\nSent %s", n.Body, n.SentAt.Format("2006-01-02 15:04")))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send reminder mail: %w", err)
	}
	return nil
}
