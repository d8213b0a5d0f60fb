package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/walletsign/go-walletsign-server/services"
	"github.com/walletsign/go-walletsign-server/types"
)

type SessionApi struct {
	sessionService *services.SessionService
}

func NewSessionApi(sessionService *services.SessionService) *SessionApi {
	return &SessionApi{
		sessionService: sessionService,
	}
}

// Validate a session token
// @Summary Validate a session token
// @Description Checks the bearer token and returns the session identity and remaining lifetime
// @Tags Session
// @Success 200 {object} types.OutputSession
// @Failure 401 {object} api.ApiError "missing, invalid or expired token"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Produce json
// @Router /session/validate [get]
func (sa *SessionApi) ValidateSession(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		ApiErrorf(c, http.StatusUnauthorized, "Authorization header is missing")
		return
	}
	token := strings.TrimPrefix(auth, "Bearer ")

	claims, err := sa.sessionService.Validate(token)
	if err != nil {
		switch err {
		case types.ErrTokenExpired:
			ApiErrorf(c, http.StatusUnauthorized, "session expired")
		default:
			ApiErrorf(c, http.StatusUnauthorized, "invalid session token")
		}
		return
	}

	msLeft := (claims.ExpiresAt - time.Now().UTC().Unix()) * 1000
	c.JSON(http.StatusOK, types.OutputSession{
		Ok:            true,
		Email:         claims.Email,
		WalletAddress: claims.WalletAddress,
		Exp:           claims.ExpiresAt,
		MsLeft:        msLeft,
	})
}
