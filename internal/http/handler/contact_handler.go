package handler

import (
	"encoding/json"
	"net/http"

	"github.com/NicoGleichmann/shopWebsite/internal/http/response"
	"github.com/NicoGleichmann/shopWebsite/internal/service"
)

type ContactHandler struct {
	contact *service.ContactService
}

func NewContactHandler(contact *service.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "name, email and message are required")
		return
	}

	if err := h.contact.Relay(r.Context(), req.Name, req.Email, req.Message); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Message(w, r, http.StatusOK, "Nachricht gesendet! Wir melden uns so schnell wie möglich.")
}
