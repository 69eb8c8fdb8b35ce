package tree

import (
	"fmt"
	"math"
	"strings"
)

// Builder converts flat TOC listings into hierarchical node trees and groups
// page texts into token-bounded batches for LLM calls.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder { return &Builder{} }

// BuildTree converts a flat TOC into a forest of nodes with resolved page
// ranges. Entries must carry a structure path, a title, and a physical index;
// a malformed entry is a structural data error because dropping it silently
// would corrupt page coverage. An empty TOC yields an empty forest.
func (b *Builder) BuildTree(flatTOC []TOCEntry, totalPages int) ([]*Node, error) {
	if len(flatTOC) == 0 {
		return nil, nil
	}

	for i, e := range flatTOC {
		if e.Structure == "" {
			return nil, fmt.Errorf("toc entry %d (%q): missing structure path", i, e.Title)
		}
		if e.PhysicalIndex < 1 {
			return nil, fmt.Errorf("toc entry %d (%q): physical_index %d out of range", i, e.Title, e.PhysicalIndex)
		}
	}

	nodes := assignPageRanges(flatTOC, totalPages)

	// Nest by dotted structure path: "1.2" is a child of "1" when "1" exists,
	// otherwise a root. Entries arrive in document order, so a parent is
	// always seen before its children.
	byPath := make(map[string]*Node, len(nodes))
	var roots []*Node
	for i, n := range nodes {
		path := flatTOC[i].Structure
		byPath[path] = n

		parentPath := ""
		if idx := strings.LastIndex(path, "."); idx >= 0 {
			parentPath = path[:idx]
		}
		if parent, ok := byPath[parentPath]; ok && parentPath != "" {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
	}

	for _, root := range roots {
		liftParentEnds(root)
	}
	return roots, nil
}

// assignPageRanges resolves start/end indexes in flat document order. The
// next entry's page is exclusive when its title confirmedly appears at the
// top of that page, inclusive otherwise — an uncertain boundary errs
// inclusive so content is never lost. The last entry runs to totalPages.
func assignPageRanges(flatTOC []TOCEntry, totalPages int) []*Node {
	nodes := make([]*Node, len(flatTOC))
	for i, e := range flatTOC {
		n := &Node{
			Title:      e.Title,
			StartIndex: e.PhysicalIndex,
		}
		if i < len(flatTOC)-1 {
			next := flatTOC[i+1]
			if next.AppearStart == "yes" {
				n.EndIndex = next.PhysicalIndex - 1
			} else {
				n.EndIndex = next.PhysicalIndex
			}
		} else {
			n.EndIndex = totalPages
		}
		if n.EndIndex < n.StartIndex {
			n.EndIndex = n.StartIndex
		}
		nodes[i] = n
	}
	return nodes
}

// liftParentEnds raises a parent's end index to its last child's end, so a
// section always covers everything its subsections cover.
func liftParentEnds(n *Node) {
	for _, c := range n.Children {
		liftParentEnds(c)
	}
	if len(n.Children) > 0 {
		last := n.Children[len(n.Children)-1]
		if last.EndIndex > n.EndIndex {
			n.EndIndex = last.EndIndex
		}
	}
}

// GroupPages splits page texts into token-bounded groups with page overlap
// for cross-boundary context continuity. When everything fits in maxTokens a
// single whole-document group is returned. Overlapping pages appear in two
// consecutive groups on purpose. A page larger than maxTokens still forms
// its own group — it is never dropped or split mid-page here.
func (b *Builder) GroupPages(pageTexts []string, tokenLengths []int, maxTokens, overlapPages int) ([]string, error) {
	if len(pageTexts) != len(tokenLengths) {
		return nil, fmt.Errorf("group pages: %d texts but %d token lengths", len(pageTexts), len(tokenLengths))
	}
	if len(pageTexts) == 0 {
		return nil, nil
	}

	total := 0
	for _, t := range tokenLengths {
		total += t
	}
	if total <= maxTokens {
		return []string{strings.Join(pageTexts, "")}, nil
	}

	// Aim for evenly sized parts rather than greedily filling to maxTokens,
	// which tends to leave a tiny final group.
	expectedParts := int(math.Ceil(float64(total) / float64(maxTokens)))
	avgTokens := int(math.Ceil((float64(total)/float64(expectedParts) + float64(maxTokens)) / 2))

	var groups []string
	var current []string
	count := 0

	for i, text := range pageTexts {
		if count+tokenLengths[i] > avgTokens && len(current) > 0 {
			groups = append(groups, strings.Join(current, ""))
			overlapStart := i - overlapPages
			if overlapStart < 0 {
				overlapStart = 0
			}
			current = append([]string(nil), pageTexts[overlapStart:i]...)
			count = 0
			for _, t := range tokenLengths[overlapStart:i] {
				count += t
			}
		}
		current = append(current, text)
		count += tokenLengths[i]
	}
	if len(current) > 0 {
		groups = append(groups, strings.Join(current, ""))
	}
	return groups, nil
}
