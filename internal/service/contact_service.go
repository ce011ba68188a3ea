package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
)

// ContactService relays contact-form submissions to the shop inbox. Messages
// are not persisted.
type ContactService struct {
	mailer Mailer
	inbox  string
	logger *slog.Logger
}

func NewContactService(mailer Mailer, inbox string, logger *slog.Logger) *ContactService {
	return &ContactService{mailer: mailer, inbox: inbox, logger: logger}
}

func (s *ContactService) Relay(ctx context.Context, name, email, message string) error {
	email = NormalizeEmail(email)
	if name == "" || message == "" {
		return fmt.Errorf("%w: name and message are required", ErrInvalidInput)
	}
	if !validEmail(email) {
		return ErrInvalidEmail
	}

	escName := html.EscapeString(name)
	escMsg := html.EscapeString(message)
	msg := Message{
		To:      s.inbox,
		ReplyTo: email,
		Subject: "New Contact Form Submission",
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s\n", name, email, message),
		HTML: `<p>You have a new contact form submission from:</p>
<ul>
  <li>Name: ` + escName + `</li>
  <li>Email: ` + email + `</li>
</ul>
<p>Message:</p>
<p>` + escMsg + `</p>`,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("relay contact mail: %w", err)
	}
	s.logger.InfoContext(ctx, "contact form relayed", "from", email)
	return nil
}
