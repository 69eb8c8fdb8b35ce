// Package promptcache assembles layered prompts and places a bounded number
// of provider cache breakpoints on the layers with the highest reuse value.
package promptcache

import (
	"sort"

	"github.com/apsscout/pagetree/internal/llm"
)

// LayerType identifies the kind of content a context layer carries.
type LayerType string

const (
	LayerSystem   LayerType = "system"
	LayerTools    LayerType = "tools"
	LayerDocument LayerType = "document"
	LayerQuery    LayerType = "query"
)

// layerPriority orders layers by how valuable they are to cache. Lower is
// more valuable. The query layer changes every call, so it never gets a
// breakpoint.
var layerPriority = map[LayerType]int{
	LayerSystem:   0,
	LayerTools:    1,
	LayerDocument: 2,
	LayerQuery:    3,
}

// ContextLayer is one segment of a layered prompt.
type ContextLayer struct {
	Role            llm.Role
	Type            LayerType
	Content         string
	CacheBreakpoint bool
}

// ComputeBreakpoints resets all breakpoint flags, then assigns up to
// maxBreakpoints to the non-query layers in priority order (system, tools,
// document). Layers keep their original slice positions; only the flags
// change. The input slice is modified in place and returned.
func ComputeBreakpoints(layers []ContextLayer, maxBreakpoints int) []ContextLayer {
	for i := range layers {
		layers[i].CacheBreakpoint = false
	}
	if maxBreakpoints <= 0 {
		return layers
	}

	idx := make([]int, 0, len(layers))
	for i, l := range layers {
		if l.Type == LayerQuery {
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return layerPriority[layers[idx[a]].Type] < layerPriority[layers[idx[b]].Type]
	})

	for n, i := range idx {
		if n >= maxBreakpoints {
			break
		}
		layers[i].CacheBreakpoint = true
	}
	return layers
}
