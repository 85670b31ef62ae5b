// internal/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"gymledger/internal/reminder"
)

// SMTP sends reminder emails over plain SMTP. It implements
// reminder.Transport.
type SMTP struct {
	addr string
	from string
	auth smtp.Auth
	log  zerolog.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP creates a transport for the given server. Auth is skipped when
// username is empty, which most local relays expect.
func NewSMTP(host string, port int, username, password, from string, log zerolog.Logger) *SMTP {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTP{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
		log:  log,
		send: smtp.SendMail,
	}
}

// SendReminder delivers one reminder email. The outcome is binary; the
// caller records failures and never retries within a sweep.
func (m *SMTP) SendReminder(ctx context.Context, email string, kind reminder.Kind, amount decimal.Decimal, dueDate time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body := composeReminder(kind, amount, dueDate)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(body)

	if err := m.send(m.addr, m.auth, m.from, []string{email}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}

	m.log.Debug().Str("to", email).Str("kind", string(kind)).Msg("reminder email sent")
	return nil
}

func composeReminder(kind reminder.Kind, amount decimal.Decimal, dueDate time.Time) (subject, body string) {
	due := dueDate.Format("2006-01-02")
	switch kind {
	case reminder.KindThreeDayPrior:
		subject = "Your membership payment is due in 3 days"
		body = fmt.Sprintf("Your membership fee of %s is due on %s.\r\n", amount.StringFixed(2), due)
	case reminder.KindDueToday:
		subject = "Your membership payment is due today"
		body = fmt.Sprintf("Your membership fee of %s is due today (%s).\r\n", amount.StringFixed(2), due)
	}
	return subject, body
}
