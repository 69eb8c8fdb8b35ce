package promptcache

import (
	"github.com/apsscout/pagetree/internal/llm"
)

// Builder turns prompt pieces into provider messages with cache markers in
// the right places. MaxBreakpoints reflects the provider's limit on cache
// markers per request (Anthropic accepts at most 4).
type Builder struct {
	MaxBreakpoints int
}

// NewBuilder returns a Builder with the standard breakpoint budget.
func NewBuilder() *Builder {
	return &Builder{MaxBreakpoints: 4}
}

// BuildLayers assembles the layered prompt in stable order: system, tools,
// document, query. Empty pieces are omitted. Breakpoints are assigned
// before returning.
func (b *Builder) BuildLayers(systemPrompt, tools, document, query string) []ContextLayer {
	var layers []ContextLayer
	if systemPrompt != "" {
		layers = append(layers, ContextLayer{Role: llm.RoleSystem, Type: LayerSystem, Content: systemPrompt})
	}
	if tools != "" {
		layers = append(layers, ContextLayer{Role: llm.RoleSystem, Type: LayerTools, Content: tools})
	}
	if document != "" {
		layers = append(layers, ContextLayer{Role: llm.RoleSystem, Type: LayerDocument, Content: document})
	}
	if query != "" {
		layers = append(layers, ContextLayer{Role: llm.RoleUser, Type: LayerQuery, Content: query})
	}
	return ComputeBreakpoints(layers, b.MaxBreakpoints)
}

// BuildMessages produces the two-message structure used for cached
// extraction calls: one system message whose content blocks carry the cache
// markers, and one plain user message holding the query. Content that
// changes least sits earliest in the prompt so provider prefix caching can
// reuse it.
func (b *Builder) BuildMessages(systemPrompt, document, query string) []llm.Message {
	layers := b.BuildLayers(systemPrompt, "", document, query)
	return b.Messages(layers)
}

// Messages converts layers into provider messages. System-role layers are
// folded into a single system message; each keeps its own block so its
// cache marker covers exactly that layer.
func (b *Builder) Messages(layers []ContextLayer) []llm.Message {
	var sysBlocks []llm.ContentBlock
	var out []llm.Message

	for _, l := range layers {
		block := llm.ContentBlock{Type: "text", Text: l.Content}
		if l.CacheBreakpoint {
			block.CacheControl = llm.EphemeralCache
		}
		if l.Role == llm.RoleSystem {
			sysBlocks = append(sysBlocks, block)
			continue
		}
		out = append(out, llm.Message{Role: l.Role, Blocks: []llm.ContentBlock{block}})
	}

	if len(sysBlocks) > 0 {
		out = append([]llm.Message{{Role: llm.RoleSystem, Blocks: sysBlocks}}, out...)
	}
	return out
}
