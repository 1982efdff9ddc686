package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", ErrNotParticipant, http.StatusForbidden},
		{"conversation not found", ErrConversationNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", ErrUserNotFound), http.StatusNotFound},
		{"self conversation", ErrSelfConversation, http.StatusBadRequest},
		{"empty content", ErrEmptyContent, http.StatusBadRequest},
		{"conflict", ErrDuplicate, http.StatusConflict},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, HTTPStatusFromError(tc.err))
		})
	}
}

func TestPublicMessage_HidesInternalErrors(t *testing.T) {
	req := require.New(t)

	req.Equal("Internal server error", PublicMessage(errors.New("pq: relation does not exist")))
	req.Equal(ErrConversationNotFound.Error(), PublicMessage(ErrConversationNotFound))
}

func TestFailure_HasNullData(t *testing.T) {
	resp := Failure("nope")
	require.Nil(t, resp.Data)
	require.Equal(t, "Success", Success(1, "").Message)
}
