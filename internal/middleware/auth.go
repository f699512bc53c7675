package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipeshare/internal/models"
	"recipeshare/internal/service"
)

const identityKey = "identity"

// AuthMiddleware creates a gin middleware that resolves the presented bearer
// token to a registered identity and stores it in the request context. The
// token may arrive in the standard Authorization header or in X-Auth-Token;
// both go through the same resolution path.
func AuthMiddleware(authService service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		identity, err := authService.Resolve(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrUnknownIdentity) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
				c.Abort()
				return
			}
			logger.Error("Failed to resolve identity", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return parts[1], true
	}
	if token := c.GetHeader("X-Auth-Token"); token != "" {
		return token, true
	}
	return "", false
}

// CurrentIdentity returns the identity resolved by AuthMiddleware. It must
// only be called from handlers behind that middleware.
func CurrentIdentity(c *gin.Context) *models.Identity {
	return c.MustGet(identityKey).(*models.Identity)
}
