package handler

import (
	"errors"
	"net/http"

	"github.com/NicoGleichmann/shopWebsite/internal/http/response"
	"github.com/NicoGleichmann/shopWebsite/internal/service"
)

// writeServiceError maps service failure classes onto the HTTP error surface.
// Anything unrecognized is a generic 500; details stay in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		response.Error(w, r, http.StatusBadRequest, "DUPLICATE_EMAIL", "User already exists")
	case errors.Is(err, service.ErrInvalidEmail):
		response.Error(w, r, http.StatusBadRequest, "INVALID_EMAIL", "Bitte gib eine gültige E-Mail Adresse an.")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusBadRequest, "INVALID_CREDENTIALS", "Falsche Zugangsdaten")
	case errors.Is(err, service.ErrEmailNotVerified):
		response.Error(w, r, http.StatusBadRequest, "EMAIL_NOT_VERIFIED", "Bitte bestätige erst deine E-Mail Adresse!")
	case errors.Is(err, service.ErrTokenNotFound):
		response.Error(w, r, http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN", "Ungültiger oder abgelaufener Token.")
	case errors.Is(err, service.ErrAlreadySubscribed):
		response.Error(w, r, http.StatusBadRequest, "ALREADY_SUBSCRIBED", "Du bist bereits angemeldet!")
	case errors.Is(err, service.ErrInvalidInput):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, service.ErrNotAllowed):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "Keine Berechtigung für diese Aktion.")
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "Nicht gefunden.")
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "Server error")
	}
}
