package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

// ErrorHandler превращает ошибку, добавленную через c.Error, в ответ {message, data: null}
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		statusCode := errors.HTTPStatusFromError(err)

		if statusCode >= http.StatusInternalServerError {
			log.Error("Request failed", "error", err, "path", c.Request.URL.Path,
				"request_id", c.GetString(RequestIDKey))
		}

		c.JSON(statusCode, errors.Failure(errors.PublicMessage(err)))
	}
}

// Recovery отвечает 500 в общем формате вместо пустого ответа gin.Recovery
func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("Panic recovered", "panic", recovered, "path", c.Request.URL.Path,
			"request_id", c.GetString(RequestIDKey))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errors.Failure("Internal server error"))
	})
}
