package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NicoGleichmann/shopWebsite/internal/domain"
	"github.com/NicoGleichmann/shopWebsite/internal/repository"
	"github.com/NicoGleichmann/shopWebsite/internal/security"
)

// AuthService implements registration with double opt-in, token redemption
// and login against verified accounts.
type AuthService struct {
	accounts    repository.AccountRepository
	mailer      Mailer
	jwt         *security.JWTManager
	frontendURL string
	logger      *slog.Logger
}

func NewAuthService(accounts repository.AccountRepository, mailer Mailer, jwt *security.JWTManager, frontendURL string, logger *slog.Logger) *AuthService {
	return &AuthService{
		accounts:    accounts,
		mailer:      mailer,
		jwt:         jwt,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Register creates an unverified account and emails the verification link.
// The caller gets a generic acknowledgement only; neither the token nor a
// session credential leave through this path, which is what keeps an
// unverified account unusable. A duplicate identity is rejected whether or
// not the existing account is verified. Mail dispatch failure surfaces as an
// error without rolling back the already persisted account.
func (s *AuthService) Register(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return fmt.Errorf("check existing account: %w", err)
	}
	if !validEmail(email) {
		return ErrInvalidEmail
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	token, err := security.NewVerificationToken()
	if err != nil {
		return fmt.Errorf("mint verification token: %w", err)
	}

	account := &domain.Account{
		Email:             email,
		PasswordHash:      hash,
		IsVerified:        false,
		VerificationToken: token,
		Cart:              []domain.CartItem{},
		CreatedAt:         nowUTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("persist account: %w", err)
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, token)
	if err := s.mailer.Send(ctx, accountVerificationMail(email, link)); err != nil {
		// The pending account stays; there is no retry queue.
		return fmt.Errorf("dispatch verification mail: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered, verification mail sent", "email", email)
	return nil
}

// VerifyEmail redeems a verification token exactly once. The store-level
// find-and-clear guarantees a second attempt with the same token lands in the
// no-match branch, so "already used" and "never existed" are the same error.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenNotFound
	}
	account, err := s.accounts.ConsumeVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationTokenNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("redeem verification token: %w", err)
	}
	s.logger.InfoContext(ctx, "account verified", "email", account.Email)
	return nil
}

// Login validates credentials against verified accounts only and issues a
// session credential. An unknown identity and a wrong password produce the
// same error so login does not reveal which addresses are registered; an
// unverified account is reported distinctly on purpose.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = NormalizeEmail(email)

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("look up account: %w", err)
	}
	if !account.IsVerified {
		return "", nil, ErrEmailNotVerified
	}
	if err := security.CheckPassword(account.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	signed, err := s.jwt.Sign(account.ID.Hex())
	if err != nil {
		return "", nil, fmt.Errorf("issue session credential: %w", err)
	}
	return signed, account, nil
}

// Profile loads the account referenced by a session credential subject.
func (s *AuthService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	id, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, ErrNotFound
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return account, nil
}

// ReplaceCart overwrites the embedded cart. Shape checks only; the cart
// carries no further invariants.
func (s *AuthService) ReplaceCart(ctx context.Context, accountID string, items []domain.CartItem) ([]domain.CartItem, error) {
	id, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, ErrNotFound
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, fmt.Errorf("%w: cart items need a product id and a quantity of at least 1", ErrInvalidInput)
		}
	}
	if err := s.accounts.ReplaceCart(ctx, id, items); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("replace cart: %w", err)
	}
	return items, nil
}

func accountVerificationMail(email, link string) Message {
	return Message{
		To:      email,
		Subject: "Bitte bestätige deine E-Mail 🔒",
		Text: "Willkommen bei Lumio!\n\n" +
			"Bitte öffne den folgenden Link, um deinen Account zu aktivieren:\n\n" +
			link + "\n\n" +
			"Wenn du dich nicht registriert hast, kannst du diese E-Mail ignorieren.\n",
		HTML: `<div style="font-family: sans-serif; color: #333;">
  <h2>Willkommen bei Lumio!</h2>
  <p>Bitte klicke auf den Link unten, um deinen Account zu aktivieren:</p>
  <a href="` + link + `" style="background: #00f0ff; color: #000; padding: 10px 20px; text-decoration: none; border-radius: 5px; font-weight: bold;">E-Mail bestätigen</a>
  <p style="margin-top: 20px; font-size: 12px; color: #666;">Oder kopiere diesen Link: ` + link + `</p>
</div>`,
	}
}
