package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Analysis.AttemptTimeout)
	require.Len(t, cfg.Analysis.Candidates, 3)
	assert.Equal(t, CandidateConfig{Provider: ProviderGemini, Model: "gemini-1.5-pro", Structured: true}, cfg.Analysis.Candidates[0])
	assert.Equal(t, CandidateConfig{Provider: ProviderGemini, Model: "gemini-pro"}, cfg.Analysis.Legacy)
	assert.Empty(t, cfg.History.Path)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("ANALYSIS_ATTEMPT_TIMEOUT", "5s")
	t.Setenv("HISTORY_PATH", "/tmp/history.db")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Analysis.AttemptTimeout)
	assert.Equal(t, "/tmp/history.db", cfg.History.Path)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "thesis.yaml")
	err := os.WriteFile(path, []byte(`
analysis:
  candidates:
    - provider: openai
      model: gpt-4o
      structured: true
  legacy:
    provider: anthropic
    model: claude-3-5-haiku-latest
`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []CandidateConfig{{Provider: ProviderOpenAI, Model: "gpt-4o", Structured: true}}, cfg.Analysis.Candidates)
	assert.Equal(t, "anthropic/claude-3-5-haiku-latest", cfg.Analysis.Legacy.String())
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Server: ServerConfig{Port: "8000"},
		Analysis: AnalysisConfig{
			AttemptTimeout: time.Second,
			Candidates: []CandidateConfig{
				{Provider: ProviderAnthropic, Model: "claude", Structured: true},
				{Provider: ProviderGemini, Model: "gemini-pro"},
				{Provider: "mistral", Model: "large", Structured: true},
			},
			Legacy: CandidateConfig{Provider: ProviderOpenAI, Model: "gpt-4o", Structured: true},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic models do not support structured output")
	assert.Contains(t, err.Error(), "must support structured output")
	assert.Contains(t, err.Error(), `unknown provider "mistral"`)
	assert.Contains(t, err.Error(), "legacy candidate must not be structured")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LogConfig{Level: "debug"}.ParseLevel().String())
	assert.Equal(t, "INFO", LogConfig{Level: "nonsense"}.ParseLevel().String())
}

func TestHistoryResolvedPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := HistoryConfig{}.ResolvedPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".thesis-ai", "history.db"), path)

	path, err = HistoryConfig{Path: "/var/lib/thesis/history.db"}.ResolvedPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/thesis/history.db", path)
}
