package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"chat_backend/internal/middleware"
	apperrors "chat_backend/pkg/errors"
)

// fail передает ошибку в middleware.ErrorHandler, который пишет ответ
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", apperrors.ErrValidation, name)
	}
	return id, nil
}

func currentUser(c *gin.Context) (int64, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return 0, apperrors.ErrUnauthorized
	}
	return userID, nil
}

func bindError(err error) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
}
