package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"mindmaze-hunt/internal/domain"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError maps domain errors to a status code and a human-readable message.
// Storage details stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	status, code, message := classify(err)
	writeJSON(w, status, errorResponse{Success: false, Error: code, Message: message})
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "Missing token"
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusForbidden, "invalid_credential", "Invalid token"
	case errors.Is(err, domain.ErrInvalidLogin):
		return http.StatusUnauthorized, "invalid_login", "Invalid email or access code"
	case errors.Is(err, domain.ErrQuestNotFound):
		return http.StatusNotFound, "quest_not_found", "Quest not found"
	case errors.Is(err, domain.ErrTeamNotFound):
		return http.StatusNotFound, "team_not_found", "Team not found"
	case errors.Is(err, domain.ErrAlreadySolved):
		return http.StatusBadRequest, "already_solved", "Quest already solved"
	case errors.Is(err, domain.ErrWrongAnswer):
		return http.StatusBadRequest, "wrong_answer", "Incorrect answer"
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "email_taken", "Email already registered"
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "unavailable", "Request timed out"
	default:
		return http.StatusInternalServerError, "server_error", "Internal server error"
	}
}

// decodeBody parses a JSON body into v, rejecting unknown fields and trailing data.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidRequest)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", domain.ErrInvalidRequest)
	}
	return nil
}
