package handler

import (
	"github.com/gin-gonic/gin"

	"cookoff/src/app/http/dto"
	"cookoff/src/app/http/response"
	"cookoff/src/app/middleware"
	"cookoff/src/core/domain"
	"cookoff/src/core/usecase"
)

// DishHandler handles dish submission endpoints.
type DishHandler struct {
	submissionService *usecase.SubmissionService
}

func NewDishHandler(submissionService *usecase.SubmissionService) *DishHandler {
	return &DishHandler{submissionService: submissionService}
}

// Submit enters the calling player's dish into a round.
// POST /v1/rounds/:round_id/dishes
func (h *DishHandler) Submit(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}
	playerID, ok := requirePlayerID(c)
	if !ok {
		return
	}

	var req dto.SubmitDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	dish, err := h.submissionService.SubmitDish(c.Request.Context(), playerID, roundID, req.Name, req.ImageRef)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.Created(c, gin.H{"dish": dishJSON(dish)})
}

// List returns the dishes submitted to a round.
// GET /v1/rounds/:round_id/dishes
func (h *DishHandler) List(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	dishes, err := h.submissionService.ListDishes(c.Request.Context(), roundID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	out := make([]gin.H, 0, len(dishes))
	for i := range dishes {
		out = append(out, dishJSON(&dishes[i]))
	}
	response.OK(c, gin.H{"dishes": out})
}

func dishJSON(d *domain.Dish) gin.H {
	return gin.H{
		"dish_id":      d.ID,
		"round_id":     d.RoundID,
		"owner_id":     d.OwnerID,
		"name":         d.Name,
		"image_ref":    d.ImageRef,
		"submitted_at": d.SubmittedAt,
	}
}
