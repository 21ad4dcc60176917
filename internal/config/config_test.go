package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/event-discovery/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_Load_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "event-discovery", cfg.Service.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, config.BackendOpenSearch, cfg.Discovery.Backend)
	assert.Equal(t, "events", cfg.OpenSearch.IndexName)
	assert.True(t, cfg.Discovery.StructuredTimeFilters)
	assert.Equal(t, 20, cfg.Discovery.DefaultPageSize)

	assert.True(t, cfg.Sync.OnStartup)
	assert.False(t, cfg.Sync.ConsistencyCheck)
	assert.Equal(t, 100, cfg.Sync.Loader().BatchSize)
}

func Test_Load_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
service:
  environment: production
logger:
  level: debug
discovery:
  timezone: America/Chicago
  default_page_size: 50
opensearch:
  url: http://opensearch:9200
  timeout: 3s
`)
	t.Setenv("DISCOVERY_HTTP_ADDR", ":9999")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Service.Environment)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 50, cfg.Discovery.DefaultPageSize)
	assert.Equal(t, 3*time.Second, cfg.OpenSearch.Timeout)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)

	loc, err := cfg.Discovery.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())
}

func Test_Load_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "unknown_backend",
			body: "discovery:\n  backend: mongo\n",
		},
		{
			name: "bad_log_level",
			body: "logger:\n  level: loud\n",
		},
		{
			name: "bad_timezone",
			body: "discovery:\n  timezone: Mars/Olympus\n",
		},
		{
			name: "page_size_above_max",
			body: "discovery:\n  default_page_size: 90\n  max_page_size: 50\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func Test_Load_PostgresRequiresDSN(t *testing.T) {
	_, err := config.Load(writeConfig(t, "discovery:\n  backend: postgres\n"))
	assert.ErrorIs(t, err, config.ErrPostgresDSNRequired)
}

func Test_Load_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
