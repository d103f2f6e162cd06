package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadWithEnv("", envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendFile, cfg.History.Backend)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-3-flash-preview", cfg.AI.ModelOrDefault())
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.InDelta(t, 0.95, cfg.AI.TopP, 1e-9)
	assert.Empty(t, cfg.AI.APIKey)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, filepath.Join("data", "calc_history.json"), cfg.HistoryPath())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9090"

[history]
backend = "sqlite"
path = "/var/lib/calc/calc.db"

[ai]
provider = "openai"
api_key = "from-file"
temperature = 0.2
`), 0o644))

	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		"CALC_ADDR":      ":7070",
		"OPENAI_API_KEY": "from-env",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, BackendSQLite, cfg.History.Backend)
	assert.Equal(t, "/var/lib/calc/calc.db", cfg.HistoryPath())
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.ModelOrDefault())
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-9)
}

func TestLoadGenericAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadWithEnv("", envMap(map[string]string{"API_KEY": "generic"}))
	require.NoError(t, err)
	assert.Equal(t, "generic", cfg.AI.APIKey)

	cfg, err = LoadWithEnv("", envMap(map[string]string{
		"API_KEY":        "generic",
		"GEMINI_API_KEY": "specific",
	}))
	require.NoError(t, err)
	assert.Equal(t, "specific", cfg.AI.APIKey)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.toml"), envMap(nil))
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := map[string]map[string]string{
		"backend":     {"CALC_HISTORY_BACKEND": "redis"},
		"provider":    {"CALC_AI_PROVIDER": "eliza"},
		"temperature": {"CALC_AI_TEMPERATURE": "3"},
		"top_p":       {"CALC_AI_TOP_P": "0"},
		"not a float": {"CALC_AI_TOP_P": "high"},
		"not a bool":  {"CALC_TELEMETRY_ENABLED": "sometimes"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWithEnv("", envMap(env))
			require.Error(t, err)
		})
	}
}

func TestHistoryPathDefaultsPerBackend(t *testing.T) {
	cfg := Default()
	cfg.History.Backend = BackendSQLite
	assert.Equal(t, filepath.Join("data", "calc.db"), cfg.HistoryPath())
}
