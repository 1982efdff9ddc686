package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"chat_backend/internal/config"
	"chat_backend/internal/domain"
	"chat_backend/pkg/logger"
)

func TestMessageSubject(t *testing.T) {
	require.Equal(t, "conversations.100.messages", MessageSubject("conversations", 100))
}

func TestEncodeMessageEvent(t *testing.T) {
	req := require.New(t)

	data, err := EncodeMessageEvent(&domain.Message{ID: 1, ConversationID: 100, SenderID: 2, Content: "hi"})
	req.NoError(err)

	var decoded map[string]interface{}
	req.NoError(json.Unmarshal(data, &decoded))
	req.Equal(EventTypeMessageCreated, decoded["type"])

	msg, ok := decoded["message"].(map[string]interface{})
	req.True(ok)
	req.Equal("hi", msg["content"])
	req.EqualValues(100, msg["conversationId"])
	req.EqualValues(2, msg["senderId"])
	req.Contains(decoded, "publishedAt")
}

func TestConnect_DisabledWithoutURL(t *testing.T) {
	req := require.New(t)

	pub, err := Connect(config.NATSConfig{}, logger.NewNop())
	req.NoError(err)
	req.True(pub.IsConnected())
	req.NoError(pub.PublishMessage(context.Background(), &domain.Message{ID: 1}))
	pub.Close()
}
