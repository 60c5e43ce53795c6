package openaichat

import "time"

// AuthScheme selects how the bridge authenticates to the backend.
type AuthScheme string

const (
	// AuthSchemeBearer sends "Authorization: Bearer <key>".
	AuthSchemeBearer AuthScheme = "bearer"
	// AuthSchemeAppKey sends the credential verbatim in the Authorization
	// header, as required by app-key style proprietary backends.
	AuthSchemeAppKey AuthScheme = "app-key"
)

// ToolChoicePolicy controls tool_choice auto-injection when a request
// declares tools but no explicit directive.
type ToolChoicePolicy string

const (
	// ToolChoiceOff never injects a directive.
	ToolChoiceOff ToolChoicePolicy = "off"
	// ToolChoiceInjectIfAbsent forces the first declared tool when the
	// client supplied none. Some backends ignore tools without a directive.
	ToolChoiceInjectIfAbsent ToolChoicePolicy = "inject-if-absent"
	// ToolChoiceRequirePresent rejects requests that declare tools without
	// a directive.
	ToolChoiceRequirePresent ToolChoicePolicy = "require-present"
)

// Config is the immutable per-adapter configuration. It is supplied
// explicitly to constructors; nothing in this package reads ambient state.
type Config struct {
	// BaseURL of the backend, e.g. "https://api.openai.com/v1".
	BaseURL string
	// Path of the chat completion operation, joined onto BaseURL.
	Path string
	// AuthScheme and APIKey authenticate the outbound call.
	AuthScheme AuthScheme
	APIKey     string
	// Headers is an optional overlay applied verbatim to every request.
	Headers map[string]string
	// Timeout bounds a non-streaming call end to end, and the pre-response
	// phase of a streaming call.
	Timeout time.Duration
	// MaxRetries bounds retries of transient failures. Retries happen only
	// before any response bytes have been received.
	MaxRetries int
	// MaxConnections bounds concurrent upstream calls; exhaustion fails
	// fast with a retryable error instead of queuing.
	MaxConnections int64
	// DefaultMaxTokens substitutes an unset client max_tokens, since the
	// field is required on the Anthropic side but optional here.
	DefaultMaxTokens int64
	// ToolChoicePolicy is the auto-injection policy for tool_choice.
	ToolChoicePolicy ToolChoicePolicy
	// Models are the tier substitution targets.
	Models ModelTiers
}

const (
	defaultPath             = "/chat/completions"
	defaultTimeout          = 90 * time.Second
	defaultMaxRetries       = 2
	defaultMaxConnections   = 64
	defaultMaxTokens        = 4096
	defaultToolChoicePolicy = ToolChoiceOff
)

// withDefaults fills unset optional fields with documented defaults.
func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = defaultPath
	}
	if c.AuthScheme == "" {
		c.AuthScheme = AuthSchemeBearer
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = defaultMaxConnections
	}
	if c.DefaultMaxTokens <= 0 {
		c.DefaultMaxTokens = defaultMaxTokens
	}
	if c.ToolChoicePolicy == "" {
		c.ToolChoicePolicy = defaultToolChoicePolicy
	}
	return c
}
