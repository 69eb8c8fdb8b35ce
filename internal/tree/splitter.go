package tree

// Splitter finds nodes that are too large and should be subdivided.
type Splitter struct {
	MaxPagesPerNode  int
	MaxTokensPerNode int
}

// NewSplitter creates a Splitter with the given thresholds.
func NewSplitter(maxPages, maxTokens int) *Splitter {
	return &Splitter{MaxPagesPerNode: maxPages, MaxTokensPerNode: maxTokens}
}

// FindLargeNodes walks the tree depth-first and returns leaf nodes whose
// page range exceeds MaxPagesPerNode AND whose token count reaches
// MaxTokensPerNode. The conjunction is deliberate: a short but token-dense
// node, or a long but token-sparse node, is not worth splitting. Internal
// nodes are never candidates — only their leaf descendants. The tree is not
// mutated; subdivision happens downstream.
func (s *Splitter) FindLargeNodes(nodes []*Node) []SplitCandidate {
	var out []SplitCandidate
	s.walk(nodes, &out)
	return out
}

func (s *Splitter) walk(nodes []*Node, out *[]SplitCandidate) {
	for _, n := range nodes {
		if n.IsLeaf() && n.PageRange() > s.MaxPagesPerNode && n.TokenCount >= s.MaxTokensPerNode {
			*out = append(*out, SplitCandidate{
				NodeID:     n.NodeID,
				Title:      n.Title,
				StartIndex: n.StartIndex,
				EndIndex:   n.EndIndex,
				PageRange:  n.PageRange(),
				TokenCount: n.TokenCount,
			})
		}
		if len(n.Children) > 0 {
			s.walk(n.Children, out)
		}
	}
}
