package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newscompare/newscompare/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"description=Externally visible base URL for generated links"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Auth struct {
		Users map[string]string `yaml:"users" json:"users" jsonschema:"description=Optional username/password map gating the UI"`
	} `yaml:"auth" json:"auth" jsonschema:"description=Optional basic-auth gating"`

	Providers struct {
		Stories  StoriesConfig  `yaml:"stories" json:"stories" jsonschema:"description=Paginated stories listing API"`
		Research ResearchConfig `yaml:"research" json:"research" jsonschema:"description=Generative search API"`
	} `yaml:"providers" json:"providers" jsonschema:"description=News provider endpoints and credentials"`

	Query QueryConfig `yaml:"query" json:"query" jsonschema:"description=Query and rendering limits"`

	Locations        []string        `yaml:"locations" json:"locations" jsonschema:"description=Selectable locations in display order"`
	IndustryPrefixes []string        `yaml:"industry_prefixes" json:"industry_prefixes" jsonschema:"description=Industry-name prefixes for the Randomize action"`
	Taxonomy         domain.Taxonomy `yaml:"taxonomy" json:"taxonomy" jsonschema:"description=Nested category taxonomy (industry -> sub-industry -> terms)"`

	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Article text extraction configuration"`
}

// StoriesConfig holds settings for the paginated stories provider
type StoriesConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url" jsonschema:"required,description=Stories API base URL"`
	APIKey         string        `yaml:"api_key" json:"api_key" jsonschema:"description=API token (can use environment variable)"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=120s,description=Per-page request timeout"`
	MaxPages       int           `yaml:"max_pages" json:"max_pages" jsonschema:"default=50,description=Defensive cap on followed result pages"`
	LegacyEndpoint bool          `yaml:"legacy_endpoint" json:"legacy_endpoint" jsonschema:"default=false,description=Use the legacy /api/v1/stories/ path"`
}

// ResearchConfig holds settings for the generative research provider
type ResearchConfig struct {
	Endpoint          string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://api.perplexity.ai/chat/completions,description=Chat completions endpoint"`
	APIKey            string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model             string        `yaml:"model" json:"model" jsonschema:"default=sonar,description=Model name"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=300s,description=Request timeout"`
	SearchContextSize string        `yaml:"search_context_size" json:"search_context_size" jsonschema:"default=medium,description=Web search context size hint"`
}

// QueryConfig holds query defaults and rendering limits
type QueryConfig struct {
	DefaultLookbackDays int `yaml:"default_lookback_days" json:"default_lookback_days" jsonschema:"default=30,description=Lookback window in days when not specified"`
	MaxItemsRendered    int `yaml:"max_items_rendered" json:"max_items_rendered" jsonschema:"default=20,description=Maximum items shown per panel"`
	ExcerptLimit        int `yaml:"excerpt_limit" json:"excerpt_limit" jsonschema:"default=300,description=Excerpt length in characters before truncation"`
}

// ExtractionConfig holds article text extraction settings
type ExtractionConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable the read-article endpoint"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Extraction timeout per article"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Newscompare/1.0,description=User agent for article fetches"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables, used for provider keys
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// setDefaults fills zero values with working defaults
func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Providers.Stories.Timeout == 0 {
		c.Providers.Stories.Timeout = 120 * time.Second
	}
	if c.Providers.Stories.MaxPages == 0 {
		c.Providers.Stories.MaxPages = 50
	}

	if c.Providers.Research.Endpoint == "" {
		c.Providers.Research.Endpoint = "https://api.perplexity.ai/chat/completions"
	}
	if c.Providers.Research.Model == "" {
		c.Providers.Research.Model = "sonar"
	}
	if c.Providers.Research.Timeout == 0 {
		c.Providers.Research.Timeout = 300 * time.Second
	}
	if c.Providers.Research.SearchContextSize == "" {
		c.Providers.Research.SearchContextSize = "medium"
	}

	if c.Query.DefaultLookbackDays == 0 {
		c.Query.DefaultLookbackDays = domain.DefaultLookbackDays
	}
	if c.Query.MaxItemsRendered == 0 {
		c.Query.MaxItemsRendered = 20
	}
	if c.Query.ExcerptLimit == 0 {
		c.Query.ExcerptLimit = 300
	}

	// fallbacks keep the form usable with a minimal config
	if len(c.Locations) == 0 {
		c.Locations = []string{"North America", "Europe"}
	}
	if len(c.IndustryPrefixes) == 0 {
		c.IndustryPrefixes = []string{"Packaging"}
	}

	if c.Extraction.Timeout == 0 {
		c.Extraction.Timeout = 30 * time.Second
	}
	if c.Extraction.UserAgent == "" {
		c.Extraction.UserAgent = "Newscompare/1.0"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if cfg.Providers.Stories.BaseURL == "" {
		return fmt.Errorf("providers.stories.base_url is required")
	}
	if cfg.Providers.Stories.Timeout < time.Second {
		return fmt.Errorf("providers.stories.timeout must be at least 1 second")
	}
	if cfg.Providers.Stories.MaxPages < 1 {
		return fmt.Errorf("providers.stories.max_pages must be at least 1")
	}
	if cfg.Providers.Research.Timeout < time.Second {
		return fmt.Errorf("providers.research.timeout must be at least 1 second")
	}

	// taxonomy names must be non-empty; empty term lists are allowed
	for _, ind := range cfg.Taxonomy {
		if ind.Name == "" {
			return fmt.Errorf("taxonomy industry name must not be empty")
		}
		for _, g := range ind.Groups {
			if g.Name == "" {
				return fmt.Errorf("taxonomy group name must not be empty under %q", ind.Name)
			}
		}
	}

	for user, passwd := range cfg.Auth.Users {
		if user == "" || passwd == "" {
			return fmt.Errorf("auth.users entries must have non-empty user and password")
		}
	}

	if cfg.Extraction.Enabled && cfg.Extraction.Timeout < time.Second {
		return fmt.Errorf("extraction timeout must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetStoriesConfig returns the stories provider configuration
func (c *Config) GetStoriesConfig() StoriesConfig {
	return c.Providers.Stories
}

// GetResearchConfig returns the research provider configuration
func (c *Config) GetResearchConfig() ResearchConfig {
	return c.Providers.Research
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}
