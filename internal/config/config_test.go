package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_DSN", "postgres://localhost/test")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(8080, cfg.Server.Port)
	req.Equal(256, cfg.Realtime.SendBufferSize)
	req.Equal(54*time.Second, cfg.Realtime.PingPeriod())
	req.Equal([]string{"*"}, cfg.Server.AllowedOrigins)
	req.Empty(cfg.NATS.URL)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("MESSAGE_MAX_LENGTH", "not-a-number")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(9090, cfg.Server.Port)
	req.Equal(30*time.Second, cfg.RateLimit.Window)
	req.Equal([]string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	req.Equal(4000, cfg.Messages.MaxLength)
}

func TestValidate_RejectsBadRealtimeBuffer(t *testing.T) {
	t.Setenv("REALTIME_SEND_BUFFER", "0")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_HandshakeLimit(t *testing.T) {
	req := require.New(t)
	t.Setenv("WS_HANDSHAKE_LIMIT", "5")
	t.Setenv("WS_HANDSHAKE_WINDOW", "10s")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(5, cfg.RateLimit.HandshakeRequests)
	req.Equal(10*time.Second, cfg.RateLimit.HandshakeWindow)
}
