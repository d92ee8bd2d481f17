package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cookoff/src/app/http/response"
	"cookoff/src/core/ports"
)

const playerHeader = "X-Player-Id"

// PlayerIDKey is the context key under which the authenticated player's
// id is stored.
const PlayerIDKey = "player_id"

// PlayerAuth enforces that the incoming request carries a valid player
// identity. It reads the X-Player-Id header, validates the player exists,
// and stores the id in the context under the key "player_id".
//
// This is identification rather than authentication: the id is an opaque
// token the client obtained at registration, and whoever holds it acts as
// that player.
func PlayerAuth(repo ports.ContestRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := GetRequestID(c)

		playerIDStr := c.GetHeader(playerHeader)
		if playerIDStr == "" {
			response.Unauthorized(c, "missing X-Player-Id header", requestID)
			c.Abort()
			return
		}

		playerID, err := uuid.Parse(playerIDStr)
		if err != nil {
			response.BadRequest(c, "invalid X-Player-Id", requestID)
			c.Abort()
			return
		}

		if _, err := repo.GetPlayerByID(c.Request.Context(), playerID); err != nil {
			response.Unauthorized(c, "player not found", requestID)
			c.Abort()
			return
		}

		c.Set(PlayerIDKey, playerID)
		c.Next()
	}
}

// GetPlayerID retrieves the authenticated player's id from the Gin context.
// Returns uuid.Nil and false when PlayerAuth did not run.
func GetPlayerID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(PlayerIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
