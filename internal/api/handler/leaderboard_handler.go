package handler

import (
	"net/http"
	"strconv"

	"dsa_arena/internal/app/service"
	"dsa_arena/internal/common"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(ls *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.top)
}

func (h *LeaderboardHandler) top(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit")) // invalid falls back to the default

	entries, err := h.leaderboardService.Top(r.Context(), limit)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
