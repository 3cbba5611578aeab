package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "@every 15m", cfg.AuditSchedule)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("DB_DRIVER", "pgx")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "pgx", cfg.DBDriver)
}

func TestFromEnvCollectsErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PAGE_SIZE", "ten")
	t.Setenv("REFRESH_TOKEN_TTL", "-1h")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "PAGE_SIZE")
	assert.Contains(t, err.Error(), "REFRESH_TOKEN_TTL")
}
