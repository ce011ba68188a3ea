package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/NicoGleichmann/shopWebsite/internal/domain"
	"github.com/NicoGleichmann/shopWebsite/internal/repository"
	"github.com/NicoGleichmann/shopWebsite/internal/security"
)

// NewsletterService implements the subscriber-side double opt-in and the
// admin broadcast. Unlike account registration, a repeated signup while
// unverified re-issues the token and resends the mail.
type NewsletterService struct {
	subscribers       repository.SubscriberRepository
	mailer            Mailer
	frontendURL       string
	unsubscribeSecret string
	logger            *slog.Logger
}

func NewNewsletterService(subscribers repository.SubscriberRepository, mailer Mailer, frontendURL, unsubscribeSecret string, logger *slog.Logger) *NewsletterService {
	return &NewsletterService{
		subscribers:       subscribers,
		mailer:            mailer,
		frontendURL:       frontendURL,
		unsubscribeSecret: unsubscribeSecret,
		logger:            logger,
	}
}

// Subscribe signs an address up. Already-verified addresses are rejected;
// pending ones get a fresh token (the old one becomes unredeemable) and a
// resent mail; new ones are created pending.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidEmail
	}

	token, err := security.NewVerificationToken()
	if err != nil {
		return fmt.Errorf("mint verification token: %w", err)
	}

	existing, err := s.subscribers.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return ErrAlreadySubscribed
	case err == nil:
		if err := s.subscribers.ReplaceToken(ctx, email, token); err != nil {
			return fmt.Errorf("refresh subscriber token: %w", err)
		}
	case errors.Is(err, repository.ErrSubscriberNotFound):
		sub := &domain.Subscriber{
			Email:             email,
			IsVerified:        false,
			VerificationToken: token,
			SubscribedAt:      nowUTC(),
		}
		if err := s.subscribers.Create(ctx, sub); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				// Lost a race with a concurrent signup for the same address.
				return ErrAlreadySubscribed
			}
			return fmt.Errorf("persist subscriber: %w", err)
		}
	default:
		return fmt.Errorf("look up subscriber: %w", err)
	}

	link := fmt.Sprintf("%s/verify-newsletter?token=%s", s.frontendURL, token)
	if err := s.mailer.Send(ctx, subscriptionVerificationMail(email, link)); err != nil {
		return fmt.Errorf("dispatch verification mail: %w", err)
	}

	s.logger.InfoContext(ctx, "newsletter signup pending verification", "email", email)
	return nil
}

// Verify redeems a subscription token, exactly once.
func (s *NewsletterService) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenNotFound
	}
	sub, err := s.subscribers.ConsumeVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationTokenNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("redeem subscription token: %w", err)
	}
	s.logger.InfoContext(ctx, "newsletter subscription verified", "email", sub.Email)
	return nil
}

// Unsubscribe removes an address, but only when the request carries the HMAC
// signature that was embedded in a broadcast sent to that address. Removal is
// idempotent.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email, sig string) error {
	email = NormalizeEmail(email)
	if !security.VerifyUnsubscribe(email, sig, s.unsubscribeSecret) {
		return ErrNotAllowed
	}
	if err := s.subscribers.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("remove subscriber: %w", err)
	}
	s.logger.InfoContext(ctx, "newsletter unsubscribed", "email", email)
	return nil
}

// BroadcastResult reports the outcome of a newsletter send.
type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Broadcast sends a newsletter to every verified subscriber. Requires the
// broadcast capability on the acting account. Individual delivery failures
// are counted, logged and skipped; one bad address does not abort the run.
func (s *NewsletterService) Broadcast(ctx context.Context, actor *domain.Account, subject, html string) (BroadcastResult, error) {
	if actor == nil || !actor.CanBroadcast() {
		return BroadcastResult{}, ErrNotAllowed
	}
	if subject == "" || html == "" {
		return BroadcastResult{}, fmt.Errorf("%w: subject and body are required", ErrInvalidInput)
	}

	subs, err := s.subscribers.ListVerified(ctx)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("list recipients: %w", err)
	}

	var res BroadcastResult
	for _, sub := range subs {
		msg := broadcastMail(sub.Email, subject, html, s.unsubscribeLink(sub.Email))
		if err := s.mailer.Send(ctx, msg); err != nil {
			res.Failed++
			s.logger.WarnContext(ctx, "newsletter delivery failed", "email", sub.Email, "error", err)
			continue
		}
		res.Sent++
	}

	s.logger.InfoContext(ctx, "newsletter broadcast finished",
		"actor", actor.Email, "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

func (s *NewsletterService) unsubscribeLink(email string) string {
	sig := security.SignUnsubscribe(email, s.unsubscribeSecret)
	return fmt.Sprintf("%s/unsubscribe?email=%s&sig=%s", s.frontendURL, url.QueryEscape(email), sig)
}

func subscriptionVerificationMail(email, link string) Message {
	return Message{
		To:      email,
		Subject: "Bitte bestätige deine Anmeldung zum Glow Club ✨",
		Text:    "Bitte bestätige deine Anmeldung, indem du diesen Link klickst: " + link + "\n",
		HTML: `<div style="font-family: Arial, sans-serif; color: #333; max-width: 600px;">
  <h2 style="color: #00f0ff;">Fast geschafft!</h2>
  <p>Klicke auf den Button, um dem Glow Club beizutreten und keine Drops mehr zu verpassen.</p>
  <a href="` + link + `" style="display: inline-block; background: #000; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 30px; font-weight: bold; margin-top: 10px;">Jetzt bestätigen</a>
  <p style="margin-top: 20px; font-size: 12px; color: #999;">Oder Link kopieren: ` + link + `</p>
</div>`,
	}
}

func broadcastMail(email, subject, html, unsubscribeLink string) Message {
	footer := `<p style="margin-top: 24px; font-size: 12px; color: #999;"><a href="` + unsubscribeLink + `">Newsletter abbestellen</a></p>`
	return Message{
		To:      email,
		Subject: subject,
		Text:    "Diese E-Mail enthält HTML-Inhalte. Abbestellen: " + unsubscribeLink + "\n",
		HTML:    html + footer,
	}
}
