// Package config loads calc-pro settings from an optional TOML file and the
// environment. Environment variables win over the file; the file wins over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const DefaultConfigFile = "calc.toml"

// History backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Assistant providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-3-flash-preview",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-sonnet-4-20250514",
}

var providerKeyEnv = map[string]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	History   HistoryConfig   `toml:"history"`
	AI        AI              `toml:"ai"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

type ServerConfig struct {
	Addr                string `toml:"addr"`
	ShutdownTimeoutSecs int    `toml:"shutdown_timeout_secs"`
}

type HistoryConfig struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string `toml:"backend"`
	// Path is the JSON file or SQLite database; empty picks a per-backend default.
	Path string `toml:"path"`
}

// AI configures the assistant provider and its generation parameters.
type AI struct {
	Provider    string  `toml:"provider"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	Temperature float64 `toml:"temperature"`
	TopP        float64 `toml:"top_p"`
	MaxTokens   int     `toml:"max_tokens"`
}

type TelemetryConfig struct {
	// Enabled turns on the OTLP trace and metric exporters.
	Enabled bool `toml:"enabled"`
	// ExportLogs tees zap output to the OTLP log exporter.
	ExportLogs bool `toml:"export_logs"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ShutdownTimeoutSecs: 5,
		},
		History: HistoryConfig{
			Backend: BackendFile,
		},
		AI: AI{
			Provider:    ProviderGemini,
			Temperature: 0.7,
			TopP:        0.95,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
	}
}

// Load reads path (or $CALC_CONFIG, or ./calc.toml when present), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = getenv("CALC_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString(&cfg.Server.Addr, getenv("CALC_ADDR"))
	setString(&cfg.History.Backend, strings.ToLower(getenv("CALC_HISTORY_BACKEND")))
	setString(&cfg.History.Path, getenv("CALC_HISTORY_PATH"))
	setString(&cfg.AI.Provider, strings.ToLower(getenv("CALC_AI_PROVIDER")))
	setString(&cfg.AI.Model, getenv("CALC_AI_MODEL"))
	setString(&cfg.AI.BaseURL, getenv("CALC_AI_BASE_URL"))

	// provider-specific key beats the generic API_KEY, which beats the file
	setString(&cfg.AI.APIKey, getenv("API_KEY"))
	if name, ok := providerKeyEnv[cfg.AI.Provider]; ok {
		setString(&cfg.AI.APIKey, getenv(name))
	}

	if v := getenv("CALC_AI_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CALC_AI_TEMPERATURE: %w", err)
		}
		cfg.AI.Temperature = f
	}
	if v := getenv("CALC_AI_TOP_P"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CALC_AI_TOP_P: %w", err)
		}
		cfg.AI.TopP = f
	}
	if v := getenv("CALC_TELEMETRY_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CALC_TELEMETRY_ENABLED: %w", err)
		}
		cfg.Telemetry.Enabled = b
	}
	if v := getenv("CALC_TELEMETRY_EXPORT_LOGS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CALC_TELEMETRY_EXPORT_LOGS: %w", err)
		}
		cfg.Telemetry.ExportLogs = b
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch c.History.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	if _, ok := defaultModels[c.AI.Provider]; !ok {
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai temperature %g out of range [0, 2]", c.AI.Temperature)
	}
	if c.AI.TopP <= 0 || c.AI.TopP > 1 {
		return fmt.Errorf("ai top_p %g out of range (0, 1]", c.AI.TopP)
	}
	if c.AI.MaxTokens < 0 {
		return fmt.Errorf("ai max_tokens must not be negative")
	}
	return nil
}

// HistoryPath resolves the storage location for the configured backend.
func (c Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	if c.History.Backend == BackendSQLite {
		return filepath.Join("data", "calc.db")
	}
	return filepath.Join("data", "calc_history.json")
}

// ShutdownTimeout is the graceful-shutdown window in seconds, at least one.
func (c Config) ShutdownTimeout() int {
	if c.Server.ShutdownTimeoutSecs < 1 {
		return 1
	}
	return c.Server.ShutdownTimeoutSecs
}

// ModelOrDefault returns the configured model or the provider's default.
func (a AI) ModelOrDefault() string {
	if a.Model != "" {
		return a.Model
	}
	if m, ok := defaultModels[a.Provider]; ok {
		return m
	}
	return defaultModels[ProviderGemini]
}
