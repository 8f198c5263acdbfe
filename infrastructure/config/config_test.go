package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.NotEmpty(t, cfg.StateDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("KINGFACE_BACKEND_URL", "https://api.kingface.example")
	t.Setenv("KINGFACE_HTTP_TIMEOUT_MS", "2500")
	t.Setenv("KINGFACE_STATE_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.kingface.example", cfg.BackendURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.HTTPTimeout)
}

func TestValidateProductionSecret(t *testing.T) {
	t.Setenv("KINGFACE_ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("KINGFACE_DEV_JWT_SECRET", "real-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
