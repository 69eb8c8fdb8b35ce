package tree

import "time"

// PageContent is a single pre-OCR'd page. Pages are 1-indexed and form the
// addressable unit of all page-range arithmetic.
type PageContent struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	TokenCount int    `json:"token_count,omitempty"`
}

// TOCEntry is one row of a flat table-of-contents listing, as produced by
// TOC detection. Structure is a dotted path like "1.2" — segment count gives
// nesting depth, numeric order gives sibling order. AppearStart records
// whether the title text was confirmed to appear at the top of its page
// ("yes"/"no"); it decides whether the previous section's range is exclusive
// or inclusive of this entry's page.
type TOCEntry struct {
	Structure     string `json:"structure"`
	Title         string `json:"title"`
	PhysicalIndex int    `json:"physical_index"`
	AppearStart   string `json:"appear_start,omitempty"`
}

// Node is one section of the tree index with an inclusive page range.
// Children's ranges are contiguous and fall within [StartIndex, EndIndex].
type Node struct {
	NodeID      string  `json:"node_id"`
	Title       string  `json:"title"`
	StartIndex  int     `json:"start_index"`
	EndIndex    int     `json:"end_index"`
	Text        string  `json:"text,omitempty"`
	Summary     string  `json:"summary,omitempty"`
	ContentType string  `json:"content_type,omitempty"`
	TokenCount  int     `json:"token_count,omitempty"`
	Children    []*Node `json:"children,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// PageRange returns the number of pages the node spans.
func (n *Node) PageRange() int { return n.EndIndex - n.StartIndex + 1 }

// DocumentIndex is the persisted tree index for one document. It is created
// once per ingestion and replaced wholesale on re-ingestion.
type DocumentIndex struct {
	DocID          string    `json:"doc_id"`
	DocName        string    `json:"doc_name"`
	DocDescription string    `json:"doc_description,omitempty"`
	TotalPages     int       `json:"total_pages"`
	Tree           []*Node   `json:"tree"`
	CreatedAt      time.Time `json:"created_at"`
}

// NodeCount returns the total number of nodes in the index tree.
func (d *DocumentIndex) NodeCount() int {
	return len(Flatten(d.Tree))
}

// SplitCandidate describes a leaf node that exceeds both the page-count and
// token-count thresholds and should be subdivided by re-running structure
// detection over its page range.
type SplitCandidate struct {
	NodeID     string `json:"node_id"`
	Title      string `json:"title"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	PageRange  int    `json:"page_range"`
	TokenCount int    `json:"token_count"`
}
