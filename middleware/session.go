package middleware

import "github.com/gin-gonic/gin"

const SessionIDHeader = "X-Session-ID"

// SessionIDFromHeader copies the X-Session-ID header into the gin context so
// handlers and the access log can see it.
func SessionIDFromHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid := c.GetHeader(SessionIDHeader); sid != "" {
			c.Set("session_id", sid)
		}
		c.Next()
	}
}
