package retrieval

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apsscout/pagetree/internal/aps"
	"github.com/apsscout/pagetree/internal/contextcache"
	"github.com/apsscout/pagetree/internal/prompts"
	"github.com/apsscout/pagetree/internal/tree"
)

// Question is an extraction question routed through category batching.
type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Category aps.Category `json:"category"`
}

// BatchRetrieve groups questions by category and runs one tree search per
// category instead of one per question. Category searches run concurrently
// under the configured limit; a failed category is logged and omitted from
// the result map rather than failing the batch.
func (r *Retriever) BatchRetrieve(ctx context.Context, index *tree.DocumentIndex, questions []Question) (map[aps.Category]*Result, error) {
	byCategory := make(map[aps.Category][]Question)
	for _, q := range questions {
		byCategory[q.Category] = append(byCategory[q.Category], q)
	}

	r.logger.Info("batch retrieval",
		zap.Int("questions", len(questions)),
		zap.Int("categories", len(byCategory)))

	treeJSON, err := SerializeTree(index)
	if err != nil {
		return nil, err
	}

	results := make(map[aps.Category]*Result)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxConcurrent)

	for category, catQuestions := range byCategory {
		category, catQuestions := category, catQuestions
		g.Go(func() error {
			result, err := r.categorySearch(gctx, index, treeJSON, category, catQuestions)
			if err != nil {
				// One bad category should not sink the other fifteen.
				r.logger.Warn("category search failed",
					zap.String("category", string(category)),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			results[category] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// categorySearch synthesizes one query covering a whole category.
func (r *Retriever) categorySearch(ctx context.Context, index *tree.DocumentIndex, treeJSON string, category aps.Category, questions []Question) (*Result, error) {
	description := aps.CategoryDescriptions[category]
	if description == "" {
		description = string(category)
	}

	synthesized := "[" + string(category) + "] " + description
	cacheKey := contextcache.ComputeCacheKey(synthesized, contextcache.ComputeIndexHash(index), r.opts.Model, "")
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, cacheKey); err == nil {
			var cached Result
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				cached.FromCache = true
				return &cached, nil
			}
		}
	}

	template, err := r.registry.Resolve(prompts.DomainAPS, prompts.CategoryRetrieval, prompts.NameRetrieveBatch, prompts.ResolutionContext{})
	if err != nil {
		return nil, err
	}
	userPrompt := prompts.Render(template, map[string]string{
		"category":             string(category),
		"category_description": description,
		"questions":            joinQuestions(questions),
		"top_k":                strconv.Itoa(r.opts.TopK),
	})

	result, err := r.search(ctx, treeJSON, userPrompt, synthesized, index, r.opts.TopK)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := r.cache.Put(ctx, cacheKey, data, r.opts.CacheTTLSeconds); err != nil {
				r.logger.Warn("result cache write failed", zap.Error(err))
			}
		}
	}
	return result, nil
}
