package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Таксономия ошибок
var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidRequest = errors.New("invalid request")
	ErrConflict       = errors.New("conflict")
	ErrInternalServer = errors.New("internal server error")
)

// ErrValidation - синоним ErrBadRequest
var ErrValidation = ErrBadRequest

// Доменные ошибки оборачивают таксономию, поэтому errors.Is работает по обеим
var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrConversationNotFound = fmt.Errorf("conversation %w", ErrNotFound)
	ErrMessageNotFound      = fmt.Errorf("message %w", ErrNotFound)
	ErrContactNotFound      = fmt.Errorf("contact %w", ErrNotFound)
	ErrSelfConversation     = fmt.Errorf("cannot start a conversation with yourself: %w", ErrInvalidRequest)
	ErrSelfContact          = fmt.Errorf("cannot add yourself as a contact: %w", ErrInvalidRequest)
	ErrEmptyContent         = fmt.Errorf("message content is required: %w", ErrValidation)
	ErrContentTooLong       = fmt.Errorf("message content is too long: %w", ErrValidation)
	ErrNotParticipant       = fmt.Errorf("not a participant of this conversation: %w", ErrForbidden)
	ErrMessageMismatch      = fmt.Errorf("message does not belong to this conversation: %w", ErrForbidden)
	ErrInvalidToken         = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrDuplicate            = fmt.Errorf("duplicate record: %w", ErrConflict)
)

// APIResponse - единый формат ответа: при ошибке data всегда null
type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(data interface{}, message string) APIResponse {
	if message == "" {
		message = "Success"
	}
	return APIResponse{Message: message, Data: data}
}

func Failure(message string) APIResponse {
	return APIResponse{Message: message, Data: nil}
}

func HTTPStatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage возвращает текст ошибки, безопасный для клиента.
// Внутренние ошибки (БД, сеть) не раскрываются.
func PublicMessage(err error) string {
	if HTTPStatusFromError(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
