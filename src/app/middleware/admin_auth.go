package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"cookoff/src/app/http/response"
)

const adminHeader = "X-Admin-Password"

// AdminAuth protects administrative endpoints with a shared password from
// configuration. An empty configured password disables the admin surface
// entirely rather than leaving it open.
func AdminAuth(password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := GetRequestID(c)

		if password == "" {
			response.Forbidden(c, "FORBIDDEN", "admin access is not configured", requestID)
			c.Abort()
			return
		}

		provided := c.GetHeader(adminHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(password)) != 1 {
			response.Unauthorized(c, "invalid admin password", requestID)
			c.Abort()
			return
		}

		c.Next()
	}
}
