// Package config provides configuration types and loading for storymaster.
package config

import "time"

// Config is the root configuration struct.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Model     ModelConfig     `json:"model"`
	Providers ProvidersConfig `json:"providers"`
	Events    EventsConfig    `json:"events"`
	Notify    NotifyConfig    `json:"notify"`
}

// ---------------------------------------------------------------------------
// Paths – filesystem locations
// ---------------------------------------------------------------------------

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	AgentsDir    string `json:"agentsDir" envconfig:"AGENTS_DIR"`
	ResourcesDir string `json:"resourcesDir" envconfig:"RESOURCES_DIR"`
	SessionsDir  string `json:"sessionsDir" envconfig:"SESSIONS_DIR"`
	DatabasePath string `json:"databasePath" envconfig:"DATABASE_PATH"`
}

// ---------------------------------------------------------------------------
// Model – text generation behaviour
// ---------------------------------------------------------------------------

// ModelConfig groups generation defaults and the provider fallback order.
type ModelConfig struct {
	MaxTokens     int           `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature   float64       `json:"temperature" envconfig:"TEMPERATURE"`
	CallTimeout   time.Duration `json:"callTimeout" envconfig:"CALL_TIMEOUT"`
	FallbackOrder []string      `json:"fallbackOrder"`
}

// ---------------------------------------------------------------------------
// Providers – LLM API keys & endpoints
// ---------------------------------------------------------------------------

// ProvidersConfig contains LLM provider configurations.
type ProvidersConfig struct {
	OpenAI    ProviderConfig `json:"openai"`
	Anthropic ProviderConfig `json:"anthropic"`
	Gemini    ProviderConfig `json:"gemini"`
}

// ProviderConfig contains settings for a single LLM provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	APIBase string `json:"apiBase,omitempty" envconfig:"API_BASE"`
}

// ---------------------------------------------------------------------------
// Events – session event streaming
// ---------------------------------------------------------------------------

// EventsConfig configures the Kafka session event stream.
type EventsConfig struct {
	Enabled bool   `json:"enabled" envconfig:"EVENTS_ENABLED"`
	Brokers string `json:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic   string `json:"topic" envconfig:"EVENTS_TOPIC"`
}

// ---------------------------------------------------------------------------
// Notify – health alert delivery
// ---------------------------------------------------------------------------

// NotifyConfig configures Slack health alerts.
type NotifyConfig struct {
	Enabled      bool   `json:"enabled" envconfig:"NOTIFY_ENABLED"`
	SlackToken   string `json:"slackToken" envconfig:"SLACK_TOKEN"`
	SlackChannel string `json:"slackChannel" envconfig:"SLACK_CHANNEL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			AgentsDir:    "~/.storymaster/agents",
			ResourcesDir: "~/.storymaster/resources",
			SessionsDir:  "~/.storymaster/sessions",
			DatabasePath: "~/.storymaster/storymaster.db",
		},
		Model: ModelConfig{
			MaxTokens:     1000,
			Temperature:   0.7,
			CallTimeout:   30 * time.Second,
			FallbackOrder: []string{"openai", "anthropic", "gemini"},
		},
		Events: EventsConfig{
			Enabled: false,
			Brokers: "localhost:9092",
			Topic:   "storymaster.sessions",
		},
		Notify: NotifyConfig{
			Enabled: false,
		},
	}
}
