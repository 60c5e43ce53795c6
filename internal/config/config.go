package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"claudebridge/internal/anthropicadapter/openaichat"
)

// envPrefix namespaces environment overrides, e.g.
// CLAUDEBRIDGE_UPSTREAM__BASE_URL. A double underscore separates nesting
// levels so single underscores stay usable inside key names.
const envPrefix = "CLAUDEBRIDGE_"

// Config is the full application configuration. Precedence, lowest first:
// built-in defaults, TOML config file, environment variables.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Models   ModelsConfig   `koanf:"models"`

	// ToolChoicePolicy controls tool_choice auto-injection.
	ToolChoicePolicy string `koanf:"tool_choice_policy" validate:"oneof=off inject-if-absent require-present"`
	// ModelsEndpoint toggles the /v1/models alias routes.
	ModelsEndpoint bool `koanf:"models_endpoint"`
}

// ServerConfig configures the listening side.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required,hostname_port"`
	MaxRequestBytes int64         `koanf:"max_request_bytes" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// UpstreamConfig configures the backend connection.
type UpstreamConfig struct {
	BaseURL        string            `koanf:"base_url" validate:"required,url"`
	Path           string            `koanf:"path"`
	AuthScheme     string            `koanf:"auth_scheme" validate:"oneof=bearer app-key"`
	APIKey         string            `koanf:"api_key"`
	Headers        map[string]string `koanf:"headers"`
	Timeout        time.Duration     `koanf:"timeout" validate:"gt=0"`
	MaxRetries     int               `koanf:"max_retries" validate:"gte=0"`
	MaxConnections int64             `koanf:"max_connections" validate:"gt=0"`
	MaxTokens      int64             `koanf:"max_tokens" validate:"gt=0"`
}

// ModelsConfig names the backend substitution targets per tier. Empty
// values mean passthrough (middle additionally falls through to big).
type ModelsConfig struct {
	Big    string `koanf:"big"`
	Middle string `koanf:"middle"`
	Small  string `koanf:"small"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.addr":              "127.0.0.1:8082",
		"server.max_request_bytes": int64(10 << 20),
		"server.shutdown_timeout":  5 * time.Second,
		"upstream.base_url":        "https://api.openai.com/v1",
		"upstream.path":            "/chat/completions",
		"upstream.auth_scheme":     "bearer",
		"upstream.timeout":         90 * time.Second,
		"upstream.max_retries":     2,
		"upstream.max_connections": int64(64),
		"upstream.max_tokens":      int64(4096),
		"tool_choice_policy":       "off",
		"models_endpoint":          true,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the configuration from defaults, an optional TOML file, and
// environment variables. An empty path skips the file layer; a named file
// must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Upstream.APIKey == "" {
		key, err := LoadAPIKey()
		if err != nil && !errors.Is(err, ErrNoStoredKey) {
			return nil, err
		}
		cfg.Upstream.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints. The API key is checked here and
// not via struct tag so the keyring fallback has already run.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Upstream.APIKey == "" {
		return errors.New("no upstream API key configured: set upstream.api_key, CLAUDEBRIDGE_UPSTREAM__API_KEY, or run `claudebridge auth set-key`")
	}
	return nil
}

// AdapterConfig projects the configuration onto the adapter's shape.
func (c *Config) AdapterConfig() openaichat.Config {
	return openaichat.Config{
		BaseURL:          c.Upstream.BaseURL,
		Path:             c.Upstream.Path,
		AuthScheme:       openaichat.AuthScheme(c.Upstream.AuthScheme),
		APIKey:           c.Upstream.APIKey,
		Headers:          c.Upstream.Headers,
		Timeout:          c.Upstream.Timeout,
		MaxRetries:       c.Upstream.MaxRetries,
		MaxConnections:   c.Upstream.MaxConnections,
		DefaultMaxTokens: c.Upstream.MaxTokens,
		ToolChoicePolicy: openaichat.ToolChoicePolicy(c.ToolChoicePolicy),
		Models: openaichat.ModelTiers{
			Big:    c.Models.Big,
			Middle: c.Models.Middle,
			Small:  c.Models.Small,
		},
	}
}
