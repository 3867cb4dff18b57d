package handlers

import (
	"net/http"

	"github.com/ecoclean/backend/internal/models"
	"github.com/ecoclean/backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Compute(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to compute leaderboard"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(entries))
}
