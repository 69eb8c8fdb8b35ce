package config

// QualityTier controls the model selection and trade-off between speed/cost and quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
)

// Config is the top-level pagetree configuration, corresponding to .pagetree.yml.
type Config struct {
	Provider    ProviderType      `yaml:"provider" koanf:"provider"`
	Model       string            `yaml:"model" koanf:"model"`
	Quality     QualityTier       `yaml:"quality" koanf:"quality"`
	LLM         LLMConfig         `yaml:"llm" koanf:"llm"`
	Indexing    IndexingConfig    `yaml:"indexing" koanf:"indexing"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" koanf:"retrieval"`
	Cache       CacheConfig       `yaml:"cache" koanf:"cache"`
	Persistence PersistenceConfig `yaml:"persistence" koanf:"persistence"`
	Server      ServerConfig      `yaml:"server" koanf:"server"`
}

// LLMConfig holds client-level settings shared by indexing and retrieval.
type LLMConfig struct {
	MaxRetries     int     `yaml:"max_retries" koanf:"max_retries"`
	BaseDelayMS    int     `yaml:"base_delay_ms" koanf:"base_delay_ms"`
	MaxDelayMS     int     `yaml:"max_delay_ms" koanf:"max_delay_ms"`
	JitterFactor   float64 `yaml:"jitter_factor" koanf:"jitter_factor"`
	TimeoutSeconds int     `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	Concurrency    int     `yaml:"concurrency" koanf:"concurrency"`
	// RequestsPerMinute throttles calls to the provider; 0 disables.
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// IndexingConfig controls tree construction.
type IndexingConfig struct {
	MaxPagesPerNode   int    `yaml:"max_pages_per_node" koanf:"max_pages_per_node"`
	MaxTokensPerNode  int    `yaml:"max_tokens_per_node" koanf:"max_tokens_per_node"`
	MaxTokensPerGroup int    `yaml:"max_tokens_per_group" koanf:"max_tokens_per_group"`
	OverlapPages      int    `yaml:"overlap_pages" koanf:"overlap_pages"`
	MaxRecursionDepth int    `yaml:"max_recursion_depth" koanf:"max_recursion_depth"`
	Tokenizer         string `yaml:"tokenizer" koanf:"tokenizer"`
	SummaryModel      string `yaml:"summary_model" koanf:"summary_model"`
}

// RetrievalConfig controls tree search.
type RetrievalConfig struct {
	TopK          int `yaml:"top_k" koanf:"top_k"`
	MaxConcurrent int `yaml:"max_concurrent" koanf:"max_concurrent"`
}

// CacheConfig selects and sizes the retrieval result cache.
type CacheConfig struct {
	// Backend is "memory", "redis", or "object".
	Backend    string `yaml:"backend" koanf:"backend"`
	Capacity   int    `yaml:"capacity" koanf:"capacity"`
	TTLSeconds int    `yaml:"ttl_seconds" koanf:"ttl_seconds"`
	RedisAddr  string `yaml:"redis_addr" koanf:"redis_addr"`
}

// PersistenceConfig selects the index store.
type PersistenceConfig struct {
	// Backend is "file", "memory", "s3", or "sqlite".
	Backend  string `yaml:"backend" koanf:"backend"`
	Dir      string `yaml:"dir" koanf:"dir"`
	Path     string `yaml:"path" koanf:"path"`
	Bucket   string `yaml:"bucket" koanf:"bucket"`
	Prefix   string `yaml:"prefix" koanf:"prefix"`
	KMSKeyID string `yaml:"kms_key_id" koanf:"kms_key_id"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr" koanf:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}
