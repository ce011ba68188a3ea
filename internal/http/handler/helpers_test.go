package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NicoGleichmann/shopWebsite/internal/domain"
	"github.com/NicoGleichmann/shopWebsite/internal/http/middleware"
	"github.com/NicoGleichmann/shopWebsite/internal/repository"
	"github.com/NicoGleichmann/shopWebsite/internal/security"
	"github.com/NicoGleichmann/shopWebsite/internal/service"

	"github.com/go-chi/chi/v5"
)

// memAccountRepo is a map-backed stand-in for the Mongo account store,
// faithful to its uniqueness and token-consumption semantics.
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // keyed by email
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *memAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	cp := *account
	r.accounts[account.Email] = &cp
	return nil
}

func (r *memAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acc, ok := r.accounts[email]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, repository.ErrAccountNotFound
}

func (r *memAccountRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if acc.ID == id {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *memAccountRepo) ConsumeVerificationToken(_ context.Context, token string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if acc.VerificationToken != "" && acc.VerificationToken == token {
			acc.IsVerified = true
			acc.VerificationToken = ""
			cp := *acc
			return &cp, nil
		}
	}
	return nil, repository.ErrVerificationTokenNotFound
}

func (r *memAccountRepo) ReplaceCart(_ context.Context, id primitive.ObjectID, items []domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if acc.ID == id {
			acc.Cart = items
			return nil
		}
	}
	return repository.ErrAccountNotFound
}

// promote grants the broadcast capability to an existing account.
func (r *memAccountRepo) promote(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acc, ok := r.accounts[email]; ok {
		acc.IsAdmin = true
	}
}

// token returns the pending verification token for an address, for tests
// that need to play the role of the mail recipient.
func (r *memAccountRepo) token(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acc, ok := r.accounts[email]; ok {
		return acc.VerificationToken
	}
	return ""
}

type memSubscriberRepo struct {
	mu   sync.Mutex
	subs map[string]*domain.Subscriber
}

func newMemSubscriberRepo() *memSubscriberRepo {
	return &memSubscriberRepo{subs: make(map[string]*domain.Subscriber)}
}

func (r *memSubscriberRepo) Create(_ context.Context, sub *domain.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	cp := *sub
	r.subs[sub.Email] = &cp
	return nil
}

func (r *memSubscriberRepo) FindByEmail(_ context.Context, email string) (*domain.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[email]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, repository.ErrSubscriberNotFound
}

func (r *memSubscriberRepo) ReplaceToken(_ context.Context, email, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[email]
	if !ok || sub.IsVerified {
		return repository.ErrSubscriberNotFound
	}
	sub.VerificationToken = token
	return nil
}

func (r *memSubscriberRepo) ConsumeVerificationToken(_ context.Context, token string) (*domain.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.VerificationToken != "" && sub.VerificationToken == token {
			sub.IsVerified = true
			sub.VerificationToken = ""
			cp := *sub
			return &cp, nil
		}
	}
	return nil, repository.ErrVerificationTokenNotFound
}

func (r *memSubscriberRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, email)
	return nil
}

func (r *memSubscriberRepo) ListVerified(_ context.Context) ([]domain.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Subscriber
	for _, sub := range r.subs {
		if sub.IsVerified {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *memSubscriberRepo) token(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[email]; ok {
		return sub.VerificationToken
	}
	return ""
}

type sentMail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) Send(_ context.Context, msg service.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: msg.To, Subject: msg.Subject, Text: msg.Text, HTML: msg.HTML})
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *captureMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

const (
	testFrontendURL       = "https://shop.example.test"
	testUnsubscribeSecret = "unsubscribe-secret-for-tests"
)

// env bundles a fully wired API surface over in-memory stores.
type env struct {
	router      chi.Router
	accounts    *memAccountRepo
	subscribers *memSubscriberRepo
	mailer      *captureMailer
	jwt         *security.JWTManager
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	accounts := newMemAccountRepo()
	subscribers := newMemSubscriberRepo()
	mailer := &captureMailer{}
	jwtMgr := security.NewJWTManager("shop-website", "0123456789abcdef0123456789abcdef", 7*24*time.Hour)

	authSvc := service.NewAuthService(accounts, mailer, jwtMgr, testFrontendURL, logger)
	newsSvc := service.NewNewsletterService(subscribers, mailer, testFrontendURL, testUnsubscribeSecret, logger)

	authH := NewAuthHandler(authSvc)
	newsH := NewNewsletterHandler(newsSvc, authSvc)

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authH.Register)
		r.Post("/verify-email", authH.VerifyEmail)
		r.Post("/login", authH.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtMgr))
			r.Get("/profile", authH.Profile)
			r.Put("/cart", authH.ReplaceCart)
		})
	})
	r.Route("/api/newsletter", func(r chi.Router) {
		r.Post("/subscribe", newsH.Subscribe)
		r.Post("/verify", newsH.Verify)
		r.Post("/unsubscribe", newsH.Unsubscribe)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtMgr))
			r.Post("/send", newsH.Send)
		})
	})

	return &env{router: r, accounts: accounts, subscribers: subscribers, mailer: mailer, jwt: jwtMgr}
}

func (e *env) do(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status=%d want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatalf("expected an error response, got %s", rec.Body.String())
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error=%+v want code %q", env.Error, code)
	}
}
