// Package config loads the YAML configuration file and applies
// DEEPCRAWL_* environment overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full CLI configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	LLM     LLMConfig     `yaml:"llm"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
}

// SearchConfig points at the seed search provider.
type SearchConfig struct {
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
}

// LLMConfig selects and configures the relevance filter backend.
// Provider is one of "gemini", "openai", or "none".
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

// CrawlConfig bounds the orchestrator.
type CrawlConfig struct {
	MaxDepth               int     `yaml:"max_depth"`
	MaxPagesPerDepth       int     `yaml:"max_pages_per_depth"`
	MaxConcurrentFetches   int     `yaml:"max_concurrent_fetches"`
	PerPageTimeoutMs       int     `yaml:"per_page_timeout_ms"`
	LinkRelevanceThreshold float64 `yaml:"link_relevance_threshold"`
	MinContentLen          int     `yaml:"min_content_len"`
	QualityCriterion       string  `yaml:"quality_criterion"`
}

// BrowserConfig configures the headless browser fetch path.
type BrowserConfig struct {
	Headless  bool   `yaml:"headless"`
	UserAgent string `yaml:"user_agent"`
}

// OutputConfig controls report rendering. Format is "markdown", "json",
// or "both".
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{
			BaseURL:    "http://localhost:8888",
			MaxResults: 8,
		},
		LLM: LLMConfig{
			Provider: "none",
		},
		Crawl: CrawlConfig{
			MaxDepth:               2,
			MaxPagesPerDepth:       10,
			MaxConcurrentFetches:   5,
			PerPageTimeoutMs:       15000,
			LinkRelevanceThreshold: 0.4,
			MinContentLen:          100,
		},
		Browser: BrowserConfig{
			Headless:  true,
			UserAgent: "deepcrawl/0.1",
		},
		Output: OutputConfig{
			Dir:    ".",
			Format: "markdown",
		},
	}
}

// Load reads the YAML file at path (optional) over the defaults, then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DEEPCRAWL_SEARCH_URL"); v != "" {
		cfg.Search.BaseURL = v
	}
	if v := os.Getenv("DEEPCRAWL_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("DEEPCRAWL_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("DEEPCRAWL_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("DEEPCRAWL_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
}
