package dto

// RegisterRequest is the payload for /v1/players.
type RegisterRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// CreateRoundRequest is the payload for creating a round. The name is
// optional; a missing name gets a sequential default.
type CreateRoundRequest struct {
	Name string `json:"name"`
}

// SubmitDishRequest is the payload for entering a dish into a round.
type SubmitDishRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageRef string `json:"image_ref"`
}

// SubmitRatingRequest is the payload for rating a dish.
type SubmitRatingRequest struct {
	Score int `json:"score" binding:"required"`
}
