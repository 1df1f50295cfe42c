package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"mindmaze-hunt/internal/domain"
)

// HuntService is the set of use cases the HTTP layer exposes.
type HuntService interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error)
	ListQuests(ctx context.Context) ([]domain.PublicQuest, error)
	Submit(ctx context.Context, teamID, questID, answer string) (domain.SubmitResult, error)
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
	Hint(ctx context.Context, questID string) (string, error)
	Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error)
}

// Handler serves the REST API.
type Handler struct {
	service HuntService
}

func NewHandler(service HuntService) *Handler {
	return &Handler{service: service}
}

type loginRequest struct {
	Email      string `json:"email"`
	AccessCode string `json:"accessCode"`
	Name       string `json:"name"`
}

type submitRequest struct {
	Answer *string `json:"answer"`
}

type submitResponse struct {
	Success   bool     `json:"success"`
	Points    int      `json:"points"`
	SolvedIDs []string `json:"solvedIds"`
}

type hintResponse struct {
	Hint string `json:"hint"`
}

// Login handles POST /api/teams/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, fmt.Errorf("%w: email is required", domain.ErrInvalidRequest))
		return
	}
	if req.AccessCode == "" && strings.TrimSpace(req.Name) == "" {
		writeError(w, fmt.Errorf("%w: accessCode or name is required", domain.ErrInvalidRequest))
		return
	}

	res, err := h.service.Login(r.Context(), domain.LoginRequest{
		Email:      req.Email,
		Name:       req.Name,
		AccessCode: req.AccessCode,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListQuests handles GET /api/quests.
func (h *Handler) ListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := h.service.ListQuests(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quests)
}

// Submit handles POST /api/quests/{id}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	questID := r.PathValue("id")
	if questID == "" {
		writeError(w, fmt.Errorf("%w: quest id is required", domain.ErrInvalidRequest))
		return
	}

	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Answer == nil {
		writeError(w, fmt.Errorf("%w: answer is required", domain.ErrInvalidRequest))
		return
	}

	res, err := h.service.Submit(r.Context(), session.TeamID, questID, *req.Answer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success:   true,
		Points:    res.Points,
		SolvedIDs: res.SolvedIDs,
	})
}

// Hint handles GET /api/quests/{id}/hint.
func (h *Handler) Hint(w http.ResponseWriter, r *http.Request) {
	text, err := h.service.Hint(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hintResponse{Hint: text})
}

// Leaderboard handles GET /api/leaderboard.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrStorage) {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}
