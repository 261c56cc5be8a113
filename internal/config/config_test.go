package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestParse(t *testing.T) {
	t.Run("Memory storage with defaults", func(t *testing.T) {
		cfg, err := Parse([]byte(`
server:
  port: 50051
storage:
  type: memory
jwt:
  secret: ` + secret + `
`))
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.HTTPPort)
		assert.Equal(t, 12*time.Hour, cfg.JWT.AgentExpiry())
		assert.Equal(t, 30*24*time.Hour, cfg.JWT.GuestExpiry())
		assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.MarkNoShows)
		assert.Equal(t, 5, cfg.Scheduler.MaxDeliveryAttempts)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("Postgres needs a database", func(t *testing.T) {
		_, err := Parse([]byte("server:\n  port: 50051\njwt:\n  secret: " + secret + "\n"))
		assert.ErrorContains(t, err, "database host is required")
	})

	t.Run("Short secret", func(t *testing.T) {
		_, err := Parse([]byte("server:\n  port: 50051\nstorage:\n  type: memory\njwt:\n  secret: short\n"))
		assert.ErrorContains(t, err, "at least 32 characters")
	})

	t.Run("Unknown storage", func(t *testing.T) {
		_, err := Parse([]byte("server:\n  port: 50051\nstorage:\n  type: redis\njwt:\n  secret: " + secret + "\n"))
		assert.ErrorContains(t, err, "unknown storage type")
	})

	t.Run("Firebase without credentials", func(t *testing.T) {
		_, err := Parse([]byte("server:\n  port: 50051\nstorage:\n  type: memory\njwt:\n  secret: " + secret + "\nfirebase:\n  enabled: true\n"))
		assert.ErrorContains(t, err, "credentials_file")
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 50051
database:
  host: db.internal
  user: guestflow
  database: guestflow
jwt:
  secret: `+secret+`
`), 0o600))

	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("TBO_WEBHOOK_SECRET", "hook")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://guestflow:@localhost:6543/guestflow?sslmode=disable", cfg.GetDatabaseConnectionString())
	assert.Equal(t, "hook", cfg.Integrations.TBOWebhookSecret)
	assert.Equal(t, ":50051", cfg.GetServerAddress())
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/guestflow.api.v1.AuthService/Login"))
	assert.Equal(t, SecurityGuest, GetSecurityLevel("/guestflow.api.v1.GuestService/SubmitRSVP"))
	assert.Equal(t, SecurityAgent, GetSecurityLevel("/guestflow.api.v1.Unknown/Method"))
}
