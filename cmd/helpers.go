package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/apsscout/pagetree/internal/aps"
	"github.com/apsscout/pagetree/internal/breaker"
	"github.com/apsscout/pagetree/internal/config"
	"github.com/apsscout/pagetree/internal/contextcache"
	"github.com/apsscout/pagetree/internal/indexer"
	"github.com/apsscout/pagetree/internal/llm"
	"github.com/apsscout/pagetree/internal/persistence"
	"github.com/apsscout/pagetree/internal/prompts"
	"github.com/apsscout/pagetree/internal/retrieval"
	"github.com/apsscout/pagetree/internal/tokenizer"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `pagetree init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func newLLMClient(cfg *config.Config, logger *zap.Logger) (*llm.Client, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.RequestsPerMinute > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.LLM.RequestsPerMinute)
	}
	opts := llm.DefaultClientOptions()
	if cfg.LLM.MaxRetries > 0 {
		opts.MaxRetries = cfg.LLM.MaxRetries
	}
	if cfg.LLM.BaseDelayMS > 0 {
		opts.BaseDelay = time.Duration(cfg.LLM.BaseDelayMS) * time.Millisecond
	}
	if cfg.LLM.MaxDelayMS > 0 {
		opts.MaxDelay = time.Duration(cfg.LLM.MaxDelayMS) * time.Millisecond
	}
	if cfg.LLM.JitterFactor > 0 {
		opts.JitterFactor = cfg.LLM.JitterFactor
	}
	if cfg.LLM.TimeoutSeconds > 0 {
		opts.RequestTimeout = time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	}
	if cfg.LLM.Concurrency > 0 {
		opts.Concurrency = cfg.LLM.Concurrency
	}
	return llm.NewClient(provider, opts, logger), nil
}

func newBackend(ctx context.Context, cfg *config.Config) (persistence.Backend, error) {
	return persistence.New(ctx, persistence.Options{
		Type:     cfg.Persistence.Backend,
		Dir:      cfg.Persistence.Dir,
		Path:     cfg.Persistence.Path,
		Bucket:   cfg.Persistence.Bucket,
		Prefix:   cfg.Persistence.Prefix,
		KMSKeyID: cfg.Persistence.KMSKeyID,
	})
}

func newCache(cfg *config.Config, backend persistence.Backend) contextcache.Cache {
	switch cfg.Cache.Backend {
	case "redis":
		return contextcache.NewRedisCache(cfg.Cache.RedisAddr, "", 0)
	case "object":
		return contextcache.NewObjectCache(backend)
	default:
		capacity := cfg.Cache.Capacity
		if capacity < 1 {
			capacity = 1000
		}
		return contextcache.NewMemoryCache(capacity)
	}
}

func newPipeline(cfg *config.Config, client *llm.Client, store *indexer.Store, logger *zap.Logger) (*indexer.Pipeline, error) {
	counter, err := tokenizer.New(cfg.Indexing.Tokenizer, cfg.Model)
	if err != nil {
		return nil, err
	}

	registry := prompts.DefaultRegistry()
	detector := indexer.NewLLMDetector(client, registry, cfg.Model, cfg.Indexing.MaxTokensPerGroup)
	classifier := aps.NewClassifier(client, cfg.Indexing.SummaryModel)

	opts := indexer.DefaultOptions()
	opts.MaxPagesPerNode = cfg.Indexing.MaxPagesPerNode
	opts.MaxTokensPerNode = cfg.Indexing.MaxTokensPerNode
	opts.MaxGroupTokens = cfg.Indexing.MaxTokensPerGroup
	opts.MaxRecursionDepth = cfg.Indexing.MaxRecursionDepth
	opts.MaxConcurrency = cfg.LLM.Concurrency
	opts.Model = cfg.Indexing.SummaryModel
	if opts.Model == "" {
		opts.Model = cfg.Model
	}

	return indexer.NewPipeline(client, counter, detector, classifier, registry, store, logger, opts), nil
}

func newRetriever(cfg *config.Config, client *llm.Client, cache contextcache.Cache, logger *zap.Logger) *retrieval.Retriever {
	brk := breaker.New("retrieval", 5, 30*time.Second, breaker.NewMemoryStore())
	return retrieval.NewRetriever(client, prompts.DefaultRegistry(), cache, brk, logger, retrieval.Options{
		Model:           cfg.Model,
		TopK:            cfg.Retrieval.TopK,
		MaxConcurrent:   cfg.Retrieval.MaxConcurrent,
		CacheTTLSeconds: cfg.Cache.TTLSeconds,
	})
}
