package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chat_backend/internal/service"
	"chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

const UserIDKey = "user_id"

type AuthMiddleware struct {
	authService service.AuthService
	log         logger.Logger
}

func NewAuthMiddleware(authService service.AuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

// RequireAuth требует заголовок Authorization: Bearer <token>
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return m.require(false)
}

// RequireAuthWS дополнительно принимает ?token=: браузерный WebSocket не умеет ставить заголовки
func (m *AuthMiddleware) RequireAuthWS() gin.HandlerFunc {
	return m.require(true)
}

func (m *AuthMiddleware) require(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && allowQuery {
			token = c.Query("token")
			ok = token != ""
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errors.Failure("Authorization token required"))
			return
		}

		user, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			status := errors.HTTPStatusFromError(err)
			if status != http.StatusInternalServerError {
				status = http.StatusUnauthorized
			}
			m.log.Debug("Token rejected", "error", err, "request_id", c.GetString(RequestIDKey))
			c.AbortWithStatusJSON(status, errors.Failure(errors.PublicMessage(err)))
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// UserID возвращает id аутентифицированного пользователя из контекста
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
