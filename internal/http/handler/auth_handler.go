package handler

import (
	"encoding/json"
	"net/http"

	"github.com/NicoGleichmann/shopWebsite/internal/domain"
	"github.com/NicoGleichmann/shopWebsite/internal/http/middleware"
	"github.com/NicoGleichmann/shopWebsite/internal/http/response"
	"github.com/NicoGleichmann/shopWebsite/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an unverified account and triggers the confirmation mail.
// The response is a bare acknowledgement: no session credential is issued
// until the address has been confirmed.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email and password are required")
		return
	}

	if err := h.auth.Register(r.Context(), req.Email, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, r, http.StatusOK, "Registrierung erfolgreich! Bitte prüfe deine E-Mails zur Bestätigung.")
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if err := h.auth.VerifyEmail(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, r, http.StatusOK, "E-Mail erfolgreich bestätigt! Du kannst dich jetzt einloggen.")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	token, account, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, loginResponse{Token: token, UserID: account.ID.Hex()})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	account, err := h.auth.Profile(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, account)
}

type cartRequest struct {
	Items []domain.CartItem `json:"items"`
}

func (h *AuthHandler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	items, err := h.auth.ReplaceCart(r.Context(), claims.Subject, req.Items)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, map[string][]domain.CartItem{"items": items})
}
