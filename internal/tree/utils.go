package tree

import (
	"fmt"
	"sort"
	"strings"
)

// WriteNodeIDs assigns zero-padded sequential node IDs depth-first, starting
// at startID. Returns the next available counter so subtrees can continue
// the sequence.
func WriteNodeIDs(nodes []*Node, startID int) int {
	counter := startID
	for _, n := range nodes {
		n.NodeID = fmt.Sprintf("%04d", counter)
		counter++
		counter = WriteNodeIDs(n.Children, counter)
	}
	return counter
}

// AddNodeText populates each node's text by concatenating the page texts in
// its range. Pages are 1-indexed.
func AddNodeText(nodes []*Node, pages []PageContent) {
	for _, n := range nodes {
		var sb strings.Builder
		for _, p := range pages {
			if p.PageNumber >= n.StartIndex && p.PageNumber <= n.EndIndex {
				sb.WriteString(p.Text)
			}
		}
		n.Text = sb.String()
		if len(n.Children) > 0 {
			AddNodeText(n.Children, pages)
		}
	}
}

// AddNodeTokenCounts fills in each node's token count by summing the counts
// of the pages in its range.
func AddNodeTokenCounts(nodes []*Node, pages []PageContent) {
	for _, n := range nodes {
		total := 0
		for _, p := range pages {
			if p.PageNumber >= n.StartIndex && p.PageNumber <= n.EndIndex {
				total += p.TokenCount
			}
		}
		n.TokenCount = total
		if len(n.Children) > 0 {
			AddNodeTokenCounts(n.Children, pages)
		}
	}
}

// Flatten returns all nodes depth-first.
func Flatten(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		out = append(out, n)
		out = append(out, Flatten(n.Children)...)
	}
	return out
}

// Leaves returns only the leaf nodes, depth-first.
func Leaves(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.IsLeaf() {
			out = append(out, n)
		} else {
			out = append(out, Leaves(n.Children)...)
		}
	}
	return out
}

// NodeMapping builds a node_id → node lookup for the whole forest.
func NodeMapping(nodes []*Node) map[string]*Node {
	m := make(map[string]*Node)
	for _, n := range Flatten(nodes) {
		m[n.NodeID] = n
	}
	return m
}

// SourcePages collects the sorted, deduplicated union of page numbers
// covered by the given nodes.
func SourcePages(nodes []*Node) []int {
	seen := make(map[int]struct{})
	for _, n := range nodes {
		for p := n.StartIndex; p <= n.EndIndex; p++ {
			seen[p] = struct{}{}
		}
	}
	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// TOCString renders a human-readable table of contents for the forest.
func TOCString(nodes []*Node) string {
	var sb strings.Builder
	renderTOC(&sb, nodes, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func renderTOC(sb *strings.Builder, nodes []*Node, indent int) {
	for _, n := range nodes {
		sb.WriteString(strings.Repeat("  ", indent))
		fmt.Fprintf(sb, "%s (pp. %d-%d)\n", n.Title, n.StartIndex, n.EndIndex)
		renderTOC(sb, n.Children, indent+1)
	}
}

// ValidateEntries drops TOC entries whose physical index falls outside the
// document. Out-of-range references come from LLM hallucination during TOC
// detection; they cannot be mapped to pages, so they are removed before tree
// construction rather than allowed to corrupt boundaries.
func ValidateEntries(entries []TOCEntry, totalPages int) []TOCEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.PhysicalIndex >= 1 && e.PhysicalIndex <= totalPages {
			out = append(out, e)
		}
	}
	return out
}

// AddPrefaceIfNeeded inserts a synthetic "Preface" entry at page 1 when the
// first detected section starts later, so the opening pages are not lost.
func AddPrefaceIfNeeded(entries []TOCEntry) []TOCEntry {
	if len(entries) == 0 || entries[0].PhysicalIndex <= 1 {
		return entries
	}
	preface := TOCEntry{
		Structure:     "0",
		Title:         "Preface",
		PhysicalIndex: 1,
		AppearStart:   "yes",
	}
	return append([]TOCEntry{preface}, entries...)
}

// PageText returns the concatenated text of pages in [start, end], optionally
// wrapping each page in physical_index labels for LLM prompts.
func PageText(pages []PageContent, start, end int, withLabels bool) string {
	var sb strings.Builder
	for _, p := range pages {
		if p.PageNumber < start || p.PageNumber > end {
			continue
		}
		if withLabels {
			fmt.Fprintf(&sb, "<physical_index_%d>\n%s\n<physical_index_%d>\n", p.PageNumber, p.Text, p.PageNumber)
		} else {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
