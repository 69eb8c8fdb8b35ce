// Package prefix provides deterministic ordering of retrieved node sets.
// Identical retrieval results must always serialize to identical byte
// strings, otherwise semantically equal prompts diverge and every
// downstream prompt-cache lookup misses.
package prefix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NodeRef is a retrieved-node record as seen by the stabilizer: just enough
// identity and position to sort on, plus the display fields that end up in
// the serialized context.
type NodeRef struct {
	DocID       string `json:"doc_id,omitempty"`
	NodeID      string `json:"node_id"`
	SectionPath string `json:"section_path,omitempty"`
	Title       string `json:"title"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
	Summary     string `json:"summary,omitempty"`
}

// Strategy names a sort order for stabilization.
type Strategy string

const (
	// ByPageNumber orders by (start_index, node_id).
	ByPageNumber Strategy = "page_number"
	// BySectionPath orders by (section_path, start_index).
	BySectionPath Strategy = "section_path"
	// ByDocIDPage orders by (doc_id, start_index) for multi-document sets.
	ByDocIDPage Strategy = "doc_id_page"
)

// Stabilize returns a deterministically ordered copy of nodes. For any two
// calls with the same set of nodes (in any input order) and the same
// strategy, the output sequence is identical. Node IDs break every tie so
// the ordering is total.
func Stabilize(nodes []NodeRef, strategy Strategy) ([]NodeRef, error) {
	var less func(a, b NodeRef) bool
	switch strategy {
	case ByPageNumber, "":
		less = func(a, b NodeRef) bool {
			if a.StartIndex != b.StartIndex {
				return a.StartIndex < b.StartIndex
			}
			return a.NodeID < b.NodeID
		}
	case BySectionPath:
		less = func(a, b NodeRef) bool {
			if a.SectionPath != b.SectionPath {
				return a.SectionPath < b.SectionPath
			}
			if a.StartIndex != b.StartIndex {
				return a.StartIndex < b.StartIndex
			}
			return a.NodeID < b.NodeID
		}
	case ByDocIDPage:
		less = func(a, b NodeRef) bool {
			if a.DocID != b.DocID {
				return a.DocID < b.DocID
			}
			if a.StartIndex != b.StartIndex {
				return a.StartIndex < b.StartIndex
			}
			return a.NodeID < b.NodeID
		}
	default:
		return nil, fmt.Errorf("unknown sort strategy %q", strategy)
	}

	out := append([]NodeRef(nil), nodes...)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

// StabilizeJSON serializes v to canonical JSON: object keys sorted, no
// insignificant whitespace, non-ASCII characters preserved. Identical data
// always produces an identical byte string regardless of construction order.
func StabilizeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonical json: %w", err)
	}

	// Round-trip through interface{} so struct field order collapses to the
	// map key sort that encoding/json applies.
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("canonical json: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return "", fmt.Errorf("canonical json: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
