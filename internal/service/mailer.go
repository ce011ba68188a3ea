package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	mail "github.com/wneessen/go-mail"
)

// dispatchTimeout bounds a single outbound mail send so a slow relay cannot
// hang a registration request indefinitely.
const dispatchTimeout = 10 * time.Second

// Message is one outbound email. Text and HTML are alternative bodies of the
// same content.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	ReplyTo string
}

// Mailer delivers messages. The rest of the system treats delivery as an
// external collaborator: it either works or the whole operation fails with a
// server error, nothing is retried or rolled back here.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through an authenticated SMTP relay (STARTTLS on the
// standard submission port).
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	fromName string
}

func NewSMTPMailer(host string, port int, username, password, fromName string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, fromName: fromName}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	mm := mail.NewMsg()
	if err := mm.FromFormat(m.fromName, m.username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := mm.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	mm.Subject(msg.Subject)
	mm.SetMessageIDWithValue(uuid.NewString() + "@" + m.host)
	mm.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		mm.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer is the development stand-in: it logs outbound mail instead of
// delivering it, so the full double-opt-in flow works without a relay.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "outbound mail (not delivered, no SMTP relay configured)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
