package api

import (
	"net/http"

	"github.com/ayusman/wastesort/internal/store"
)

// LeaderboardHandler serves the best sessions across all players.
type LeaderboardHandler struct {
	store *store.Store
}

// NewLeaderboardHandler creates a new LeaderboardHandler with the given store.
func NewLeaderboardHandler(s *store.Store) *LeaderboardHandler {
	return &LeaderboardHandler{store: s}
}

type leaderboardEntry struct {
	Rank    int    `json:"rank"`
	Player  string `json:"player"`
	Score   int    `json:"score"`
	Level   int    `json:"level"`
	Session string `json:"session_id"`
	EndedAt string `json:"ended_at"`
}

type leaderboardResponse struct {
	Entries []leaderboardEntry `json:"entries"`
}

// ServeHTTP handles GET /api/leaderboard?limit=.
func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, ok := queryInt(r, "limit", 10)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	limit = min(limit, maxPageSize)

	top, err := h.store.Sessions().Top(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	response := leaderboardResponse{Entries: make([]leaderboardEntry, 0, len(top))}
	for i, s := range top {
		resp := toResponse(s)
		response.Entries = append(response.Entries, leaderboardEntry{
			Rank:    i + 1,
			Player:  s.Player,
			Score:   s.Score,
			Level:   s.Level,
			Session: s.ID,
			EndedAt: resp.EndedAt,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
