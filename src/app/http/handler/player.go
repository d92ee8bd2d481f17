package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cookoff/src/app/http/dto"
	"cookoff/src/app/http/response"
	"cookoff/src/app/middleware"
	"cookoff/src/core/domain"
	"cookoff/src/core/usecase"
)

// PlayerHandler handles player registration and statistics endpoints.
type PlayerHandler struct {
	playerService *usecase.PlayerService
}

func NewPlayerHandler(playerService *usecase.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// Register creates a player and returns their id. The id is the player's
// opaque identity token; clients send it back in the X-Player-Id header.
// POST /v1/players
func (h *PlayerHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	player, err := h.playerService.Register(c.Request.Context(), req.DisplayName)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.Created(c, gin.H{"player": playerJSON(player)})
}

// Me returns the calling player with their cumulative statistics.
// GET /v1/players/me
func (h *PlayerHandler) Me(c *gin.Context) {
	playerID, ok := requirePlayerID(c)
	if !ok {
		return
	}

	player, stats, err := h.playerService.Get(c.Request.Context(), playerID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.OK(c, gin.H{
		"player": playerJSON(player),
		"stats":  statsJSON(stats),
	})
}

// Stats returns another player's cumulative statistics.
// GET /v1/players/:player_id/stats
func (h *PlayerHandler) Stats(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("player_id"))
	if err != nil {
		response.BadRequest(c, "invalid player id", middleware.GetRequestID(c))
		return
	}

	player, stats, err := h.playerService.Get(c.Request.Context(), playerID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.OK(c, gin.H{
		"player": playerJSON(player),
		"stats":  statsJSON(stats),
	})
}

// Leaderboard returns all players ordered by total points.
// GET /v1/leaderboard
func (h *PlayerHandler) Leaderboard(c *gin.Context) {
	entries, err := h.playerService.Leaderboard(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	out := make([]gin.H, 0, len(entries))
	for i, e := range entries {
		out = append(out, gin.H{
			"rank":   i + 1,
			"player": playerJSON(&e.Player),
			"stats":  statsJSON(&e.Stats),
		})
	}
	response.OK(c, gin.H{"leaderboard": out})
}

func playerJSON(p *domain.Player) gin.H {
	return gin.H{
		"player_id":    p.ID,
		"display_name": p.DisplayName,
		"created_at":   p.CreatedAt,
	}
}

func statsJSON(s *domain.PlayerStats) gin.H {
	return gin.H{
		"total_points":     s.TotalPoints,
		"games_played":     s.GamesPlayed,
		"wins":             s.Wins,
		"overall_average":  s.OverallAverage,
		"received_average": s.ReceivedAverage,
	}
}

// requirePlayerID pulls the authenticated player id set by PlayerAuth.
func requirePlayerID(c *gin.Context) (uuid.UUID, bool) {
	playerID, ok := middleware.GetPlayerID(c)
	if !ok {
		response.Unauthorized(c, "missing player identity", middleware.GetRequestID(c))
		return uuid.Nil, false
	}
	return playerID, true
}
