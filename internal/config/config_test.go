package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLAUDEBRIDGE_UPSTREAM__API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8082", cfg.Server.Addr)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxRequestBytes)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, "/chat/completions", cfg.Upstream.Path)
	assert.Equal(t, "bearer", cfg.Upstream.AuthScheme)
	assert.Equal(t, "env-key", cfg.Upstream.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 2, cfg.Upstream.MaxRetries)
	assert.Equal(t, int64(64), cfg.Upstream.MaxConnections)
	assert.Equal(t, int64(4096), cfg.Upstream.MaxTokens)
	assert.Equal(t, "off", cfg.ToolChoicePolicy)
	assert.True(t, cfg.ModelsEndpoint)
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
tool_choice_policy = "inject-if-absent"

[server]
addr = "0.0.0.0:9000"

[upstream]
base_url = "https://backend.internal/v1"
api_key = "file-key"
auth_scheme = "app-key"

[models]
big = "big-model"
small = "small-model"
`), 0o600))

	// Environment overrides the file layer.
	t.Setenv("CLAUDEBRIDGE_UPSTREAM__API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "https://backend.internal/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, "app-key", cfg.Upstream.AuthScheme)
	assert.Equal(t, "env-key", cfg.Upstream.APIKey)
	assert.Equal(t, "inject-if-absent", cfg.ToolChoicePolicy)
	assert.Equal(t, "big-model", cfg.Models.Big)
	assert.Equal(t, "small-model", cfg.Models.Small)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CLAUDEBRIDGE_UPSTREAM__API_KEY", "env-key")

	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad auth scheme", "CLAUDEBRIDGE_UPSTREAM__AUTH_SCHEME", "oauth"},
		{"bad tool choice policy", "CLAUDEBRIDGE_TOOL_CHOICE_POLICY", "sometimes"},
		{"bad base url", "CLAUDEBRIDGE_UPSTREAM__BASE_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLAUDEBRIDGE_UPSTREAM__API_KEY", "env-key")
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestAdapterConfig(t *testing.T) {
	t.Setenv("CLAUDEBRIDGE_UPSTREAM__API_KEY", "env-key")
	t.Setenv("CLAUDEBRIDGE_MODELS__BIG", "big-model")
	t.Setenv("CLAUDEBRIDGE_MODELS__MIDDLE", "mid-model")

	cfg, err := Load("")
	require.NoError(t, err)

	adapterCfg := cfg.AdapterConfig()
	assert.Equal(t, "https://api.openai.com/v1", adapterCfg.BaseURL)
	assert.Equal(t, "env-key", adapterCfg.APIKey)
	assert.Equal(t, "big-model", adapterCfg.Models.Big)
	assert.Equal(t, "mid-model", adapterCfg.Models.Middle)
	assert.Equal(t, int64(4096), adapterCfg.DefaultMaxTokens)
}
