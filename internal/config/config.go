package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	History   HistoryConfig   `mapstructure:"history"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	StaticDir      string        `mapstructure:"static_dir"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	MaxTextBytes   int64         `mapstructure:"max_text_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type OpenAIConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	APIEndpoint string `mapstructure:"endpoint"`
	APIVersion  string `mapstructure:"api_version"`
}

type AnthropicConfig struct {
	APIKey      string `mapstructure:"api_key"`
	APIEndpoint string `mapstructure:"endpoint"`
}

type AnalysisConfig struct {
	// Candidates are tried in order and must support structured output
	Candidates []CandidateConfig `mapstructure:"candidates"`

	// Legacy is tried last with a prompt-embedded JSON instruction
	Legacy CandidateConfig `mapstructure:"legacy"`

	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	MaxTokens      int64         `mapstructure:"max_tokens"`
	Temperature    float64       `mapstructure:"temperature"`
}

type CandidateConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	Structured bool   `mapstructure:"structured"`
}

func (c CandidateConfig) Enabled() bool {
	return c.Provider != "" && c.Model != ""
}

func (c CandidateConfig) String() string {
	return c.Provider + "/" + c.Model
}

type HistoryConfig struct {
	// Path of the SQLite database; empty means ~/.thesis-ai/history.db
	Path string `mapstructure:"path"`
}

// ResolvedPath returns the configured database path or the default one in
// the user's home directory.
func (h HistoryConfig) ResolvedPath() (string, error) {
	if h.Path != "" {
		return h.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".thesis-ai", "history.db"), nil
}

var envBindings = map[string]string{
	"server.port":              "SERVER_PORT",
	"server.host":              "SERVER_HOST",
	"server.read_timeout":      "SERVER_READ_TIMEOUT",
	"server.write_timeout":     "SERVER_WRITE_TIMEOUT",
	"server.request_timeout":   "SERVER_REQUEST_TIMEOUT",
	"server.static_dir":        "SERVER_STATIC_DIR",
	"server.max_upload_bytes":  "SERVER_MAX_UPLOAD_BYTES",
	"server.max_text_bytes":    "SERVER_MAX_TEXT_BYTES",
	"log.level":                "LOG_LEVEL",
	"log.format":               "LOG_FORMAT",
	"gemini.api_key":           "GEMINI_API_KEY",
	"openai.provider":          "OPENAI_PROVIDER",
	"openai.api_key":           "OPENAI_API_KEY",
	"openai.endpoint":          "OPENAI_ENDPOINT",
	"openai.api_version":       "OPENAI_API_VERSION",
	"anthropic.api_key":        "ANTHROPIC_API_KEY",
	"anthropic.endpoint":       "ANTHROPIC_ENDPOINT",
	"analysis.attempt_timeout": "ANALYSIS_ATTEMPT_TIMEOUT",
	"analysis.max_tokens":      "ANALYSIS_MAX_TOKENS",
	"analysis.temperature":     "ANALYSIS_TEMPERATURE",
	"history.path":             "HISTORY_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.request_timeout", "4m")
	v.SetDefault("server.static_dir", "web/static")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.max_text_bytes", 1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("openai.provider", "openai")
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1")
	v.SetDefault("openai.api_version", "2024-08-01-preview")

	v.SetDefault("analysis.candidates", []map[string]interface{}{
		{"provider": ProviderGemini, "model": "gemini-1.5-pro", "structured": true},
		{"provider": ProviderGemini, "model": "gemini-1.5-flash", "structured": true},
		{"provider": ProviderOpenAI, "model": "gpt-4o-mini", "structured": true},
	})
	v.SetDefault("analysis.legacy", map[string]interface{}{
		"provider": ProviderGemini, "model": "gemini-pro", "structured": false,
	})
	v.SetDefault("analysis.attempt_timeout", "60s")
	v.SetDefault("analysis.max_tokens", 8192)
	v.SetDefault("analysis.temperature", 0.2)
}

// LoadConfig reads defaults, an optional YAML config file and environment
// overrides. An empty path searches ./config.yaml and ~/.thesis-ai/config.yaml.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.thesis-ai")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		slog.Info("using config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var err error
	if c.Server.Port == "" {
		err = multierr.Append(err, errors.New("server.port must be set"))
	}
	if c.Analysis.AttemptTimeout <= 0 {
		err = multierr.Append(err, errors.New("analysis.attempt_timeout must be positive"))
	}
	for i, cand := range c.Analysis.Candidates {
		if !cand.Enabled() {
			err = multierr.Append(err, fmt.Errorf("analysis.candidates[%d]: provider and model are required", i))
			continue
		}
		err = multierr.Append(err, checkProvider(cand))
		if !cand.Structured {
			err = multierr.Append(err, fmt.Errorf("analysis.candidates[%d] %s: must support structured output, use analysis.legacy for prompt-only models", i, cand))
		}
	}
	if c.Analysis.Legacy.Enabled() {
		err = multierr.Append(err, checkProvider(c.Analysis.Legacy))
		if c.Analysis.Legacy.Structured {
			err = multierr.Append(err, fmt.Errorf("analysis.legacy %s: legacy candidate must not be structured", c.Analysis.Legacy))
		}
	}
	return err
}

func checkProvider(c CandidateConfig) error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
		return nil
	case ProviderAnthropic:
		if c.Structured {
			return fmt.Errorf("%s: anthropic models do not support structured output", c)
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown provider %q", c, c.Provider)
	}
}

// ParseLevel maps the configured log level onto slog.
func (l LogConfig) ParseLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
