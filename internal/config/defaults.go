package config

// QualityPreset describes the models to use for a given quality tier.
type QualityPreset struct {
	Model        string
	SummaryModel string
}

// qualityPresets maps each provider+quality combination to its model choices.
// Summaries use the cheaper sibling; they run once per node at index time.
var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderAnthropic: {
		QualityLite:   {Model: "claude-haiku-4-5-20251001", SummaryModel: "claude-haiku-4-5-20251001"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929", SummaryModel: "claude-haiku-4-5-20251001"},
		QualityMax:    {Model: "claude-opus-4-6", SummaryModel: "claude-sonnet-4-5-20250929"},
	},
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini", SummaryModel: "gpt-4o-mini"},
		QualityNormal: {Model: "gpt-4o", SummaryModel: "gpt-4o-mini"},
		QualityMax:    {Model: "gpt-4o", SummaryModel: "gpt-4o"},
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Model:    "claude-sonnet-4-5-20250929",
		Quality:  QualityNormal,
		LLM: LLMConfig{
			MaxRetries:     3,
			BaseDelayMS:    1000,
			MaxDelayMS:     30000,
			JitterFactor:   0.25,
			TimeoutSeconds: 120,
			Concurrency:    4,
		},
		Indexing: IndexingConfig{
			MaxPagesPerNode:   10,
			MaxTokensPerNode:  20000,
			MaxTokensPerGroup: 20000,
			OverlapPages:      1,
			MaxRecursionDepth: 10,
			Tokenizer:         "approximate",
			SummaryModel:      "claude-haiku-4-5-20251001",
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			MaxConcurrent: 4,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			Capacity:   1000,
			TTLSeconds: 3600,
			RedisAddr:  "localhost:6379",
		},
		Persistence: PersistenceConfig{
			Backend: "file",
			Dir:     "indexes",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the Normal Anthropic preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderAnthropic][QualityNormal]
}
