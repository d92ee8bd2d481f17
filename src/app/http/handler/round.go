package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cookoff/src/app/http/dto"
	"cookoff/src/app/http/response"
	"cookoff/src/app/middleware"
	"cookoff/src/core/domain"
	"cookoff/src/core/usecase"
)

// RoundHandler handles round lifecycle and progress endpoints.
type RoundHandler struct {
	roundService      *usecase.RoundService
	completionService *usecase.CompletionService
	submissionService *usecase.SubmissionService
}

func NewRoundHandler(roundService *usecase.RoundService, completionService *usecase.CompletionService, submissionService *usecase.SubmissionService) *RoundHandler {
	return &RoundHandler{
		roundService:      roundService,
		completionService: completionService,
		submissionService: submissionService,
	}
}

// Create registers a new upcoming round.
// POST /v1/rounds
func (h *RoundHandler) Create(c *gin.Context) {
	var req dto.CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	round, err := h.roundService.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.Created(c, gin.H{"round": roundJSON(round)})
}

// OpenVoting moves an upcoming round to voting_open.
// POST /v1/rounds/:round_id/open
func (h *RoundHandler) OpenVoting(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	round, err := h.roundService.OpenVoting(c.Request.Context(), roundID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"round": roundJSON(round)})
}

// List returns all rounds, newest first.
// GET /v1/rounds
func (h *RoundHandler) List(c *gin.Context) {
	rounds, err := h.roundService.List(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	out := make([]gin.H, 0, len(rounds))
	for i := range rounds {
		out = append(out, roundJSON(&rounds[i]))
	}
	response.OK(c, gin.H{"rounds": out})
}

// Get returns a single round.
// GET /v1/rounds/:round_id
func (h *RoundHandler) Get(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	round, err := h.roundService.Get(c.Request.Context(), roundID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"round": roundJSON(round)})
}

// Open returns the round currently open for voting, or null.
// GET /v1/rounds/open
func (h *RoundHandler) Open(c *gin.Context) {
	round, err := h.roundService.Open(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	if round == nil {
		response.OK(c, gin.H{"round": nil})
		return
	}
	response.OK(c, gin.H{"round": roundJSON(round)})
}

// Progress returns the per-player voting progress for a round.
// GET /v1/rounds/:round_id/progress
func (h *RoundHandler) Progress(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	progress, err := h.completionService.Progress(c.Request.Context(), roundID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, progress)
}

// VoteToFinalize casts the calling player's ballot to close the round.
// POST /v1/rounds/:round_id/finalize-votes
func (h *RoundHandler) VoteToFinalize(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}
	playerID, ok := requirePlayerID(c)
	if !ok {
		return
	}

	finalized, err := h.submissionService.VoteToFinalize(c.Request.Context(), playerID, roundID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"finalized": finalized})
}

// FinalizationStatus lists who voted to close the round and the tally.
// GET /v1/rounds/:round_id/finalize-votes
func (h *RoundHandler) FinalizationStatus(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	voters, count, err := h.submissionService.FinalizationStatus(c.Request.Context(), roundID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{
		"voters": voters,
		"count":  count,
	})
}

func roundJSON(r *domain.Round) gin.H {
	return gin.H{
		"round_id":     r.ID,
		"name":         r.Name,
		"status":       r.Status,
		"created_at":   r.CreatedAt,
		"finalized_at": r.FinalizedAt,
	}
}

func parseRoundID(c *gin.Context) (int64, bool) {
	roundID, err := strconv.ParseInt(c.Param("round_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid round id", middleware.GetRequestID(c))
		return 0, false
	}
	return roundID, true
}
