// internal/config/config.go
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire host configuration. Every field either has a
// viper default or is usable at its zero value, so an empty config file (or
// none at all) yields a runnable host.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Screen      ScreenConfig      `mapstructure:"screen" yaml:"screen"`
	Providers   ProvidersConfig   `mapstructure:"providers" yaml:"providers"`
	Limits      LimitsConfig      `mapstructure:"limits" yaml:"limits"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
}

// LoggerConfig mirrors the observability package's needs. Console output is
// pinned to stderr by the logger itself; stdout belongs to the frame stream.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig maps log levels to terminal colors for the console encoder.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// ScreenConfig supplies fallback dimensions for the stub capturer. A real
// platform capturer reports its own dimensions and ignores these.
type ScreenConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// ProvidersConfig groups the per-provider endpoint settings.
type ProvidersConfig struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai" yaml:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic" yaml:"anthropic"`
	Ollama    OllamaConfig    `mapstructure:"ollama" yaml:"ollama"`
}

type OpenAIConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Model     string        `mapstructure:"model" yaml:"model"`
	MaxTokens int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type AnthropicConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Model     string        `mapstructure:"model" yaml:"model"`
	MaxTokens int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Version   string        `mapstructure:"version" yaml:"version"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type OllamaConfig struct {
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	Model        string        `mapstructure:"model" yaml:"model"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
}

// LimitsConfig bounds inbound work.
type LimitsConfig struct {
	MaxRequestChars   int     `mapstructure:"max_request_chars" yaml:"max_request_chars"`
	MaxKeyChars       int     `mapstructure:"max_key_chars" yaml:"max_key_chars"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// CredentialsConfig selects and locates the secret backend.
type CredentialsConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// SetDefaults registers every default with viper. Called before unmarshal
// so a missing config file still produces a complete Config.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "deskhand")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	v.SetDefault("screen.width", 1920)
	v.SetDefault("screen.height", 1080)

	v.SetDefault("providers.openai.base_url", "https://api.openai.com")
	v.SetDefault("providers.openai.model", "gpt-4o")
	v.SetDefault("providers.openai.max_tokens", 1000)
	v.SetDefault("providers.openai.timeout", 60*time.Second)

	v.SetDefault("providers.anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("providers.anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("providers.anthropic.max_tokens", 1024)
	v.SetDefault("providers.anthropic.version", "2023-06-01")
	v.SetDefault("providers.anthropic.timeout", 60*time.Second)

	v.SetDefault("providers.ollama.base_url", "http://localhost:11434")
	v.SetDefault("providers.ollama.model", "llava")
	v.SetDefault("providers.ollama.timeout", 120*time.Second)
	v.SetDefault("providers.ollama.probe_timeout", 3*time.Second)

	v.SetDefault("limits.max_request_chars", 5000)
	v.SetDefault("limits.max_key_chars", 500)
	v.SetDefault("limits.requests_per_minute", 20)

	v.SetDefault("credentials.backend", "file")
	v.SetDefault("credentials.path", "")
}
