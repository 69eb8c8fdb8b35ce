package llm

// modelPricing holds per-model pricing in USD per 1M tokens.
// Cache writes carry a surcharge and cache reads a steep discount
// relative to uncached input.
type modelPricing struct {
	InputPerMillion      float64
	OutputPerMillion     float64
	CacheWritePerMillion float64
	CacheReadPerMillion  float64
}

// priceTable maps model identifiers to their pricing.
var priceTable = map[string]modelPricing{
	// Anthropic models
	"claude-sonnet-4-5-20250929": {InputPerMillion: 3.00, OutputPerMillion: 15.00, CacheWritePerMillion: 3.75, CacheReadPerMillion: 0.30},
	"claude-haiku-4-5-20251001":  {InputPerMillion: 0.80, OutputPerMillion: 4.00, CacheWritePerMillion: 1.00, CacheReadPerMillion: 0.08},

	// OpenAI models (automatic prefix caching, no write surcharge)
	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00, CacheReadPerMillion: 1.25},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60, CacheReadPerMillion: 0.075},
}

// EstimateCost returns the estimated cost in USD for the given model and
// token counts. Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

// EstimateResponseCost prices a completed response, accounting for
// cache reads and writes when the model reports them.
func EstimateResponseCost(model string, resp *CompletionResponse) float64 {
	pricing, ok := priceTable[model]
	if !ok || resp == nil {
		return 0
	}

	uncached := resp.InputTokens - resp.CacheReadTokens - resp.CacheWriteTokens
	if uncached < 0 {
		uncached = 0
	}

	cost := float64(uncached) / 1_000_000.0 * pricing.InputPerMillion
	cost += float64(resp.CacheReadTokens) / 1_000_000.0 * pricing.CacheReadPerMillion
	cost += float64(resp.CacheWriteTokens) / 1_000_000.0 * pricing.CacheWritePerMillion
	cost += float64(resp.OutputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return cost
}

// EstimateTokens provides a rough token count estimation for the given text.
// Uses the approximation of 1 token per 4 characters.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
