package http

import (
	"log/slog"
	"net/http"
)

// NewRouter wires every route onto a ServeMux wrapped in CORS and request logging.
func NewRouter(service HuntService, verifier SessionVerifier, logger *slog.Logger) http.Handler {
	api := NewHandler(service)
	ws := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/teams/login", api.Login)
	mux.HandleFunc("GET /api/quests", RequireSession(verifier, api.ListQuests))
	mux.HandleFunc("POST /api/quests/{id}/submit", RequireSession(verifier, api.Submit))
	mux.HandleFunc("GET /api/quests/{id}/hint", RequireSession(verifier, api.Hint))
	mux.HandleFunc("GET /api/leaderboard", api.Leaderboard)
	mux.HandleFunc("GET /ws/leaderboard", ws.ServeLeaderboard)

	return WithLogging(logger, CORS(mux))
}
