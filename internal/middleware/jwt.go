package middleware

import (
	"log"
	"net/http"
	"strings"

	"boltform_back_end/internal/token"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the session JWT when the storefront cannot set a header.
const SessionCookie = "session"

// AuthRequired admits requests carrying a valid session token and puts the
// principal into the gin context as "email", "name" and "user_id".
func AuthRequired(sessions *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		claims, err := sessions.Verify(raw)
		if err != nil {
			log.Printf("❌ Session token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		email := claims.String("email")
		if email == "" {
			log.Println("❌ Session token without email")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		c.Set("email", email)
		c.Set("name", claims.String("name"))
		c.Set("user_id", claims.String("userId"))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
