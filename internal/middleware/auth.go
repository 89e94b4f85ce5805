package middleware

import (
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/pkg/token"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuthMiddleware struct {
	logger     *logrus.Logger
	jwtManager *token.TokenManager
}

func NewAuthMiddleware(logger *logrus.Logger, jwtManager *token.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

// JWTAuth puts the authenticated user's ID into the context as "user_id".
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			resp := response.UnauthorizedErrorWithAdditionalInfo(nil, "Authorization header is required")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		bearerToken, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || bearerToken == "" {
			resp := response.UnauthorizedErrorWithAdditionalInfo(nil, "Authorization header must be a bearer token")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		claims, err := m.jwtManager.ValidateToken(bearerToken)
		if err != nil {
			m.logger.WithError(err).Debug("Rejected token")
			resp := response.UnauthorizedErrorWithAdditionalInfo(err.Error())
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		if claims.UserID == uuid.Nil {
			resp := response.UnauthorizedErrorWithAdditionalInfo(nil, "Invalid user ID in token")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
