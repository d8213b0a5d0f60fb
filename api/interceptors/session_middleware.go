package interceptors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/walletsign/go-walletsign-server/services"
	"github.com/walletsign/go-walletsign-server/types"
)

// SessionMiddleware guards routes that require a verified identity. It parses
// the bearer token, validates signature and expiry and puts the session
// identity into the request context under "email" and "wallet".
func SessionMiddleware(sessionService *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		claims, err := sessionService.Validate(token)
		if err != nil {
			switch err {
			case types.ErrTokenExpired:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			}
			return
		}

		c.Set("email", claims.Email)
		c.Set("wallet", claims.WalletAddress)
		c.Next()
	}
}
