package notify

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// Sender is the part of *gomail.Dialer the email notifier needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	sender Sender
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) *EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return NewEmailServiceWithSender(dialer, fromEmail)
}

func NewEmailServiceWithSender(sender Sender, fromEmail string) *EmailService {
	return &EmailService{sender: sender, from: fromEmail}
}

// NotifyCascade mails every recipient of the notice. Notices without
// recipients are ignored.
func (s *EmailService) NotifyCascade(_ context.Context, notice CascadeNotice) error {
	if len(notice.Recipients) == 0 {
		return nil
	}
	msgs := make([]*gomail.Message, 0, len(notice.Recipients))
	for _, to := range notice.Recipients {
		m := gomail.NewMessage()
		m.SetHeader("From", s.from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Your card contracts were closed")

		body := fmt.Sprintf(`
		<h3>Card contracts closed</h3>
		<p>The %s <strong>%s</strong> was deactivated on %s.</p>
		<p>The following contracts were closed on the same day: %s.</p>
		<p>If you believe this is a mistake, please contact our support team.</p>
	`, notice.Cause, html.EscapeString(notice.EntityName), notice.EffectiveDate, contractIDs(notice.Contracts))

		m.SetBody("text/html", body)
		msgs = append(msgs, m)
	}

	if err := s.sender.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("failed to send cascade email: %w", err)
	}
	return nil
}
