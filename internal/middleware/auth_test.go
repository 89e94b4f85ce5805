package middleware

import (
	"go-finance-ledger/pkg/token"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *token.TokenManager) {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	jwtManager := token.NewTokenManager("middleware-secret", 1)
	m := NewAuthMiddleware(logger, jwtManager)

	r := gin.New()
	r.Use(MetricsMiddleware(), LoggerMiddleware(logger))
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet("user_id").(uuid.UUID).String())
	})
	return r, jwtManager
}

func TestJWTAuth(t *testing.T) {
	r, jwtManager := setupAuthRouter(t)

	userID := uuid.New()
	valid, err := jwtManager.GenerateToken(userID)
	require.NoError(t, err)

	foreign, err := token.NewTokenManager("other-secret", 1).GenerateToken(userID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}
