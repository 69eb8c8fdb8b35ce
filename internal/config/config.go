package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PAGETREE_*). Nested keys use a double
// underscore: PAGETREE_RETRIEVAL__TOP_K overrides retrieval.top_k.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("PAGETREE_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "PAGETREE_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderAnthropic: true,
	ProviderOpenAI:    true,
}

// validQualityTiers is the set of recognized quality tier values.
var validQualityTiers = map[QualityTier]bool{
	QualityLite:   true,
	QualityNormal: true,
	QualityMax:    true,
}

var validCacheBackends = map[string]bool{
	"memory": true,
	"redis":  true,
	"object": true,
}

var validPersistenceBackends = map[string]bool{
	"file":   true,
	"memory": true,
	"s3":     true,
	"sqlite": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of anthropic, openai", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.Quality != "" && !validQualityTiers[c.Quality] {
		return fmt.Errorf("invalid quality %q: must be one of lite, normal, max", c.Quality)
	}

	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache backend %q: must be one of memory, redis, object", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity must be non-negative")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be non-negative")
	}

	if !validPersistenceBackends[c.Persistence.Backend] {
		return fmt.Errorf("invalid persistence backend %q: must be one of file, memory, s3, sqlite", c.Persistence.Backend)
	}
	switch c.Persistence.Backend {
	case "file":
		if c.Persistence.Dir == "" {
			return fmt.Errorf("persistence.dir is required for the file backend")
		}
	case "s3":
		if c.Persistence.Bucket == "" {
			return fmt.Errorf("persistence.bucket is required for the s3 backend")
		}
	case "sqlite":
		if c.Persistence.Path == "" {
			return fmt.Errorf("persistence.path is required for the sqlite backend")
		}
	}

	if c.Indexing.MaxPagesPerNode < 1 {
		return fmt.Errorf("indexing.max_pages_per_node must be positive")
	}
	if c.Indexing.MaxTokensPerNode < 1 {
		return fmt.Errorf("indexing.max_tokens_per_node must be positive")
	}
	if c.Indexing.OverlapPages < 0 {
		return fmt.Errorf("indexing.overlap_pages must be non-negative")
	}

	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if c.Retrieval.MaxConcurrent < 1 {
		return fmt.Errorf("retrieval.max_concurrent must be positive")
	}

	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be non-negative")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
