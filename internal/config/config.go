package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config is read from CONCIERGE_-prefixed variables, falling back to the
// unprefixed name (CONCIERGE_ANTHROPIC_API_KEY, then ANTHROPIC_API_KEY).
type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"LOG_FILE"`

	LLMProvider      string        `envconfig:"LLM_PROVIDER" default:"anthropic"`
	AnthropicAPIKey  string        `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string        `envconfig:"ANTHROPIC_BASE_URL"`
	AnthropicModel   string        `envconfig:"ANTHROPIC_MODEL" default:"claude-3-5-haiku-20241022"`
	OpenAIAPIKey     string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel      string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	MaxOutputTokens  int           `envconfig:"MAX_OUTPUT_TOKENS" default:"1024"`
	ModelTimeout     time.Duration `envconfig:"MODEL_TIMEOUT" default:"30s"`

	TavilyAPIKey  string        `envconfig:"TAVILY_API_KEY"`
	TavilyBaseURL string        `envconfig:"TAVILY_BASE_URL"`
	BraveAPIKey   string        `envconfig:"BRAVE_API_KEY"`
	BraveBaseURL  string        `envconfig:"BRAVE_BASE_URL"`
	SearchTimeout time.Duration `envconfig:"SEARCH_TIMEOUT" default:"8s"`

	// KnowledgeFile replaces the built-in corpus when set.
	KnowledgeFile string `envconfig:"KNOWLEDGE_FILE"`

	ContactEmail string `envconfig:"CONTACT_EMAIL" default:"hello@tanyawellness.com"`
	ContactPhone string `envconfig:"CONTACT_PHONE" default:"+44 20 1234 5678"`

	SentryDSN      string `envconfig:"SENTRY_DSN"`
	Environment    string `envconfig:"ENVIRONMENT" default:"development"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CONCIERGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate checks what is needed to answer chat turns. Search keys are
// optional.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderAnthropic:
		if !c.HasAnthropic() {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=%s", c.LLMProvider)
		}
	case ProviderOpenAI:
		if !c.HasOpenAI() {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=%s", c.LLMProvider)
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be positive")
	}
	if c.ModelTimeout <= 0 || c.SearchTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT and SEARCH_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) HasAnthropic() bool {
	return c.AnthropicAPIKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasTavily() bool {
	return c.TavilyAPIKey != ""
}

func (c *Config) HasBrave() bool {
	return c.BraveAPIKey != ""
}

// HasWebSearch reports whether any search provider is configured.
func (c *Config) HasWebSearch() bool {
	return c.HasTavily() || c.HasBrave()
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
