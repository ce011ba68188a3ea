package handler

import (
	"encoding/json"
	"net/http"

	"github.com/NicoGleichmann/shopWebsite/internal/http/middleware"
	"github.com/NicoGleichmann/shopWebsite/internal/http/response"
	"github.com/NicoGleichmann/shopWebsite/internal/service"
)

type NewsletterHandler struct {
	newsletter *service.NewsletterService
	auth       *service.AuthService
}

func NewNewsletterHandler(newsletter *service.NewsletterService, auth *service.AuthService) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter, auth: auth}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if err := h.newsletter.Subscribe(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, r, http.StatusCreated, "Fast fertig! Bitte bestätige die Mail in deinem Postfach.")
}

func (h *NewsletterHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if err := h.newsletter.Verify(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, r, http.StatusOK, "Erfolgreich zum Newsletter angemeldet!")
}

// Unsubscribe accepts the email and signature from the signed link embedded
// in broadcast mails, via query parameters or a JSON body.
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	sig := r.URL.Query().Get("sig")
	if email == "" {
		var req struct {
			Email string `json:"email"`
			Sig   string `json:"sig"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}
		email, sig = req.Email, req.Sig
	}

	if err := h.newsletter.Unsubscribe(r.Context(), email, sig); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, r, http.StatusOK, "Du wurdest vom Newsletter abgemeldet.")
}

type sendRequest struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send dispatches a newsletter to all verified subscribers. The acting
// account must carry the broadcast capability.
func (h *NewsletterHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	actor, err := h.auth.Profile(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	result, err := h.newsletter.Broadcast(r.Context(), actor, req.Subject, req.HTML)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}
