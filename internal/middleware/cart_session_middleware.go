package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	cartSessionKey    = "cart_session"
)

// CartSession resolves the shopper's cart session from the X-Cart-Session
// header (or the "session" query parameter for WebSocket clients, which
// cannot set headers). Missing or malformed ids are replaced with a fresh
// one, echoed back in the response header so the client can keep it.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CartSessionHeader))
		if id == "" {
			id = strings.TrimSpace(c.Query("session"))
		}

		if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		} else {
			if id != "" {
				GetLoggerFromContext(c).Debug("Replacing malformed cart session id", nil)
			}
			id = uuid.NewString()
		}

		c.Set(cartSessionKey, id)
		c.Header(CartSessionHeader, id)
		c.Next()
	}
}

func GetCartSession(c *gin.Context) string {
	return c.GetString(cartSessionKey)
}
