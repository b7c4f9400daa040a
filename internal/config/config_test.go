package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAMLAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  env: production
jwt:
  secret: s3cret
  access_ttl: 30m
ratelimit:
  ai: {limit: 3, window: 10m}
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	applyDefaults(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 3, cfg.RateLimit.AI.Limit)
	assert.Equal(t, 5, cfg.RateLimit.Auth.Limit)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.API.Window)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg := &Config{}
	applyEnv(cfg)
	applyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, ":9090", cfg.Address())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUploadRule(t *testing.T) {
	assert.True(t, AvatarUpload.Allows("image/png"))
	assert.False(t, AvatarUpload.Allows("application/pdf"))
}
