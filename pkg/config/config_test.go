package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, DataSourcePostgres, cfg.Data.Source)
	assert.True(t, cfg.Data.FallbackToMock)
	assert.Equal(t, 300*time.Millisecond, cfg.Lists.SearchDebounce)
	assert.Equal(t, 20, cfg.Lists.DefaultPageSize)
	assert.Equal(t, "10-M", cfg.RateLimit.Login)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATA_SOURCE", "MOCK")
	t.Setenv("SEARCH_DEBOUNCE", "50ms")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://coach.example.com ,")
	t.Setenv("FITCOACH_API_URL", "http://localhost:8080/api/v1/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DataSourceMock, cfg.Data.Source)
	assert.Equal(t, 50*time.Millisecond, cfg.Lists.SearchDebounce)
	assert.Equal(t, []string{"http://localhost:5173", "https://coach.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.Remote.BaseURL)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
