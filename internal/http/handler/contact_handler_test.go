package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NicoGleichmann/shopWebsite/internal/service"
)

func TestContactSubmit(t *testing.T) {
	mailer := &captureMailer{}
	h := NewContactHandler(service.NewContactService(mailer, "inbox@example.com", slog.New(slog.DiscardHandler)))

	post := func(t *testing.T, body string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		h.Submit(rec, req)
		return rec
	}

	t.Run("relays to the inbox", func(t *testing.T) {
		rec := post(t, `{"name":"Mia","email":"mia@example.com","message":"Liefert ihr nach Österreich?"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
		}
		mail := mailer.last()
		if mail.To != "inbox@example.com" {
			t.Fatalf("mail to %q", mail.To)
		}
		if !strings.Contains(mail.Text, "mia@example.com") {
			t.Fatal("submitter address missing from relayed mail")
		}
	})

	t.Run("escapes markup in the message", func(t *testing.T) {
		post(t, `{"name":"Mia","email":"mia@example.com","message":"<script>alert(1)</script>"}`)
		if strings.Contains(mailer.last().HTML, "<script>") {
			t.Fatal("markup was not escaped")
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		wantError(t, post(t, `{"name":"Mia"}`), http.StatusBadRequest, "BAD_REQUEST")
	})

	t.Run("invalid email", func(t *testing.T) {
		wantError(t, post(t, `{"name":"Mia","email":"nope","message":"hi"}`), http.StatusBadRequest, "INVALID_EMAIL")
	})
}
