package handler

import (
	"github.com/gin-gonic/gin"

	"cookoff/src/app/http/response"
	"cookoff/src/app/middleware"
	"cookoff/src/core/usecase"
)

// AdminHandler handles administrative maintenance endpoints.
type AdminHandler struct {
	adminService *usecase.AdminService
}

func NewAdminHandler(adminService *usecase.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// RecomputeStats rebuilds all player statistics from finalized rounds.
// POST /v1/admin/stats/recompute
func (h *AdminHandler) RecomputeStats(c *gin.Context) {
	replayed, err := h.adminService.RecomputeStats(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"rounds_replayed": replayed})
}

// ResetStats zeroes every player's cumulative statistics.
// POST /v1/admin/stats/reset
func (h *AdminHandler) ResetStats(c *gin.Context) {
	if err := h.adminService.ResetStats(c.Request.Context()); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.NoContent(c)
}

// ResetContest clears all gameplay data while keeping registered players.
// POST /v1/admin/contest/reset
func (h *AdminHandler) ResetContest(c *gin.Context) {
	if err := h.adminService.ResetContest(c.Request.Context()); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.NoContent(c)
}
