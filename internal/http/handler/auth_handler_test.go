package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

// TestAccountLifecycle walks the whole double opt-in flow over the wire:
// registration issues no credential, login is refused until the mailed token
// is redeemed, and afterwards login succeeds with a credential that
// references the account.
func TestAccountLifecycle(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/auth/register",
		`{"email":"a@example.com","password":"s3cret-pass"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status=%d body=%s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); strings.Contains(body, "token") {
		t.Fatalf("registration response must not carry a credential: %s", body)
	}
	if e.mailer.count() != 1 {
		t.Fatalf("sent %d mails, want 1", e.mailer.count())
	}

	token := e.accounts.token("a@example.com")
	if len(token) != 64 {
		t.Fatalf("stored token %q, want 64 hex chars", token)
	}
	if mail := e.mailer.last(); !strings.Contains(mail.HTML, token) || !strings.Contains(mail.Text, token) {
		t.Fatal("verification mail does not carry the token link")
	}

	rec = e.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"a@example.com","password":"s3cret-pass"}`, nil)
	wantError(t, rec, http.StatusBadRequest, "EMAIL_NOT_VERIFIED")

	rec = e.do(t, http.MethodPost, "/api/auth/verify-email", `{"token":"`+token+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status=%d body=%s", rec.Code, rec.Body.String())
	}

	// The token is single-use.
	rec = e.do(t, http.MethodPost, "/api/auth/verify-email", `{"token":"`+token+`"}`, nil)
	wantError(t, rec, http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN")

	rec = e.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"a@example.com","password":"s3cret-pass"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &login); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login response is missing the session credential")
	}
	claims, err := e.jwt.Parse(login.Token)
	if err != nil {
		t.Fatalf("issued credential does not parse: %v", err)
	}
	if claims.Subject != login.UserID {
		t.Fatalf("credential subject %q, response userId %q", claims.Subject, login.UserID)
	}

	rec = e.do(t, http.MethodGet, "/api/auth/profile", "", bearer(login.Token))
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status=%d body=%s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Fatalf("profile leaks credentials: %s", body)
	}
}

func TestRegisterRejections(t *testing.T) {
	e := newEnv(t)

	if rec := e.do(t, http.MethodPost, "/api/auth/register",
		`{"email":"b@example.com","password":"pw123456"}`, nil); rec.Code != http.StatusOK {
		t.Fatalf("seed register status=%d", rec.Code)
	}

	t.Run("duplicate email", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/register",
			`{"email":"b@example.com","password":"other-pass"}`, nil)
		wantError(t, rec, http.StatusBadRequest, "DUPLICATE_EMAIL")
	})

	t.Run("duplicate detected after normalization", func(t *testing.T) {
		before := e.mailer.count()
		rec := e.do(t, http.MethodPost, "/api/auth/register",
			`{"email":"B@example.com ","password":"other-pass"}`, nil)
		wantError(t, rec, http.StatusBadRequest, "DUPLICATE_EMAIL")
		if e.mailer.count() != before {
			t.Fatal("rejected registration must not send mail")
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/register",
			`{"email":"not-an-address","password":"pw123456"}`, nil)
		wantError(t, rec, http.StatusBadRequest, "INVALID_EMAIL")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/register", `{"email":"c@example.com"}`, nil)
		wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
	})

	t.Run("garbage body", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/register", `{"email":`, nil)
		wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
	})
}

func TestLoginRejections(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/api/auth/register", `{"email":"d@example.com","password":"pw123456"}`, nil)
	e.do(t, http.MethodPost, "/api/auth/verify-email", `{"token":"`+e.accounts.token("d@example.com")+`"}`, nil)

	t.Run("unknown account", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/login",
			`{"email":"nobody@example.com","password":"pw123456"}`, nil)
		wantError(t, rec, http.StatusBadRequest, "INVALID_CREDENTIALS")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/auth/login",
			`{"email":"d@example.com","password":"wrong-pass"}`, nil)
		wantError(t, rec, http.StatusBadRequest, "INVALID_CREDENTIALS")
	})
}

func TestCartRoundTrip(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/api/auth/register", `{"email":"e@example.com","password":"pw123456"}`, nil)
	e.do(t, http.MethodPost, "/api/auth/verify-email", `{"token":"`+e.accounts.token("e@example.com")+`"}`, nil)
	rec := e.do(t, http.MethodPost, "/api/auth/login", `{"email":"e@example.com","password":"pw123456"}`, nil)
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	t.Run("requires auth", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, "/api/auth/cart", `{"items":[]}`, nil)
		wantError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
	})

	t.Run("replace and read back", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, "/api/auth/cart",
			`{"items":[{"productId":"neon-1","quantity":2}]}`, bearer(login.Token))
		if rec.Code != http.StatusOK {
			t.Fatalf("cart status=%d body=%s", rec.Code, rec.Body.String())
		}

		rec = e.do(t, http.MethodGet, "/api/auth/profile", "", bearer(login.Token))
		if !strings.Contains(rec.Body.String(), `"neon-1"`) {
			t.Fatalf("profile does not reflect replaced cart: %s", rec.Body.String())
		}
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, "/api/auth/cart",
			`{"items":[{"productId":"","quantity":1}]}`, bearer(login.Token))
		wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
	})
}
