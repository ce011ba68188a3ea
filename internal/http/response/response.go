package response

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
	Meta    meta        `json:"meta"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

type problemDetails struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Meta: buildMeta(r)})
}

// Message is the generic-acknowledgement shape used by flows that must not
// leak anything beyond "it worked" (registration, verification).
func Message(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, map[string]string{"msg": msg})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if prefersProblemJSON(r) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(problemDetails{
			Type:      "urn:problem:shop-website:" + strings.ToLower(strings.ReplaceAll(code, "_", "-")),
			Title:     problemTitle(code, status),
			Status:    status,
			Detail:    message,
			Instance:  r.URL.Path,
			Code:      code,
			RequestID: buildMeta(r).RequestID,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
		Meta:    buildMeta(r),
	})
}

func buildMeta(r *http.Request) meta {
	id := chimiddleware.GetReqID(r.Context())
	if id == "" {
		id = r.Header.Get("X-Request-Id")
	}
	if id == "" {
		id = "req-unknown"
	}
	return meta{RequestID: id, Timestamp: time.Now().UTC()}
}

func prefersProblemJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mediaType != "application/problem+json" {
			continue
		}
		if q, ok := params["q"]; ok && strings.TrimRight(q, ".0") == "" {
			continue
		}
		return true
	}
	return false
}

func problemTitle(code string, status int) string {
	switch code {
	case "DUPLICATE_EMAIL":
		return "Duplicate Email"
	case "INVALID_EMAIL":
		return "Invalid Email"
	case "INVALID_CREDENTIALS":
		return "Invalid Credentials"
	case "EMAIL_NOT_VERIFIED":
		return "Email Not Verified"
	case "INVALID_OR_EXPIRED_TOKEN":
		return "Invalid or Expired Token"
	case "ALREADY_SUBSCRIBED":
		return "Already Subscribed"
	case "RATE_LIMITED":
		return "Too Many Requests"
	default:
		if text := http.StatusText(status); text != "" {
			return text
		}
		return "Error"
	}
}
