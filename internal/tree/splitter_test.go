package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLargeNodes_Conjunction(t *testing.T) {
	s := NewSplitter(10, 20000)

	tests := []struct {
		name      string
		node      *Node
		candidate bool
	}{
		{"both thresholds exceeded", &Node{NodeID: "0001", StartIndex: 1, EndIndex: 11, TokenCount: 25000}, true},
		{"long but token-sparse", &Node{NodeID: "0002", StartIndex: 1, EndIndex: 11, TokenCount: 5000}, false},
		{"short but token-dense", &Node{NodeID: "0003", StartIndex: 1, EndIndex: 5, TokenCount: 25000}, false},
		{"token count exactly at threshold", &Node{NodeID: "0004", StartIndex: 1, EndIndex: 11, TokenCount: 20000}, true},
		{"page range exactly at threshold", &Node{NodeID: "0005", StartIndex: 1, EndIndex: 10, TokenCount: 25000}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.FindLargeNodes([]*Node{tc.node})
			if tc.candidate {
				require.Len(t, got, 1)
				assert.Equal(t, tc.node.NodeID, got[0].NodeID)
				assert.Equal(t, tc.node.PageRange(), got[0].PageRange)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFindLargeNodes_InternalNodesNeverCandidates(t *testing.T) {
	s := NewSplitter(10, 20000)

	leaf := &Node{NodeID: "0002", Title: "leaf", StartIndex: 1, EndIndex: 15, TokenCount: 30000}
	parent := &Node{
		NodeID: "0001", Title: "parent",
		StartIndex: 1, EndIndex: 40, TokenCount: 90000,
		Children: []*Node{leaf},
	}

	got := s.FindLargeNodes([]*Node{parent})
	require.Len(t, got, 1)
	assert.Equal(t, "0002", got[0].NodeID)
}

func TestFindLargeNodes_DoesNotMutateTree(t *testing.T) {
	s := NewSplitter(10, 20000)
	n := &Node{NodeID: "0001", StartIndex: 1, EndIndex: 20, TokenCount: 50000}
	_ = s.FindLargeNodes([]*Node{n})
	assert.Nil(t, n.Children)
	assert.Equal(t, 20, n.EndIndex)
}
