package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cookoff/src/app/http/dto"
	"cookoff/src/app/http/response"
	"cookoff/src/app/middleware"
	"cookoff/src/core/usecase"
)

// RatingHandler handles rating submission endpoints.
type RatingHandler struct {
	submissionService *usecase.SubmissionService
}

func NewRatingHandler(submissionService *usecase.SubmissionService) *RatingHandler {
	return &RatingHandler{submissionService: submissionService}
}

// Submit records the calling player's score for a dish. The response
// reports whether this rating finalized the round.
// POST /v1/dishes/:dish_id/ratings
func (h *RatingHandler) Submit(c *gin.Context) {
	dishID, err := strconv.ParseInt(c.Param("dish_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid dish id", middleware.GetRequestID(c))
		return
	}
	playerID, ok := requirePlayerID(c)
	if !ok {
		return
	}

	var req dto.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	rating, finalized, err := h.submissionService.SubmitRating(c.Request.Context(), playerID, dishID, req.Score)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.Created(c, gin.H{
		"rating": gin.H{
			"rating_id": rating.ID,
			"dish_id":   rating.DishID,
			"score":     rating.Score,
		},
		"round_finalized": finalized,
	})
}
