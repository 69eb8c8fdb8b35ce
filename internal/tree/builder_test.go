package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree_BoundaryAppearStartYes(t *testing.T) {
	b := NewBuilder()
	toc := []TOCEntry{
		{Structure: "1", Title: "A", PhysicalIndex: 1, AppearStart: "yes"},
		{Structure: "2", Title: "B", PhysicalIndex: 5, AppearStart: "yes"},
	}
	roots, err := b.BuildTree(toc, 10)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	assert.Equal(t, 1, roots[0].StartIndex)
	assert.Equal(t, 4, roots[0].EndIndex)
	assert.Equal(t, 5, roots[1].StartIndex)
	assert.Equal(t, 10, roots[1].EndIndex)
}

func TestBuildTree_BoundaryAppearStartNo(t *testing.T) {
	b := NewBuilder()
	toc := []TOCEntry{
		{Structure: "1", Title: "A", PhysicalIndex: 1, AppearStart: "yes"},
		{Structure: "2", Title: "B", PhysicalIndex: 5, AppearStart: "no"},
	}
	roots, err := b.BuildTree(toc, 10)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	// Uncertain boundary: page 5 stays in A's range too.
	assert.Equal(t, 5, roots[0].EndIndex)
}

func TestBuildTree_Nesting(t *testing.T) {
	b := NewBuilder()
	toc := []TOCEntry{
		{Structure: "1", Title: "One", PhysicalIndex: 1, AppearStart: "yes"},
		{Structure: "1.1", Title: "One-One", PhysicalIndex: 2, AppearStart: "yes"},
		{Structure: "1.2", Title: "One-Two", PhysicalIndex: 5, AppearStart: "yes"},
		{Structure: "2", Title: "Two", PhysicalIndex: 8, AppearStart: "yes"},
	}
	roots, err := b.BuildTree(toc, 10)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	require.Len(t, roots[0].Children, 2)
	assert.Empty(t, roots[1].Children)

	// Parent covers everything its last child covers.
	assert.Equal(t, 7, roots[0].Children[1].EndIndex)
	assert.Equal(t, 7, roots[0].EndIndex)
	assert.Equal(t, 10, roots[1].EndIndex)
}

func TestBuildTree_CoversAllPages(t *testing.T) {
	b := NewBuilder()
	toc := []TOCEntry{
		{Structure: "1", Title: "A", PhysicalIndex: 1, AppearStart: "yes"},
		{Structure: "2", Title: "B", PhysicalIndex: 3, AppearStart: "no"},
		{Structure: "3", Title: "C", PhysicalIndex: 7, AppearStart: "yes"},
	}
	roots, err := b.BuildTree(toc, 12)
	require.NoError(t, err)

	covered := make(map[int]bool)
	for _, n := range roots {
		require.LessOrEqual(t, n.StartIndex, n.EndIndex)
		for p := n.StartIndex; p <= n.EndIndex; p++ {
			covered[p] = true
		}
	}
	for p := 1; p <= 12; p++ {
		assert.True(t, covered[p], "page %d not covered", p)
	}
}

func TestBuildTree_EmptyInput(t *testing.T) {
	b := NewBuilder()
	roots, err := b.BuildTree(nil, 42)
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestBuildTree_MalformedEntry(t *testing.T) {
	b := NewBuilder()

	_, err := b.BuildTree([]TOCEntry{{Title: "no structure", PhysicalIndex: 1}}, 10)
	assert.Error(t, err)

	_, err = b.BuildTree([]TOCEntry{{Structure: "1", Title: "bad page", PhysicalIndex: 0}}, 10)
	assert.Error(t, err)
}

func TestBuildTree_OrphanDeepPathBecomesRoot(t *testing.T) {
	b := NewBuilder()
	toc := []TOCEntry{
		{Structure: "3.1", Title: "Orphan", PhysicalIndex: 1, AppearStart: "yes"},
		{Structure: "4", Title: "Root", PhysicalIndex: 5, AppearStart: "yes"},
	}
	roots, err := b.BuildTree(toc, 8)
	require.NoError(t, err)
	// "3.1" has no "3" parent in the listing, so it stays a root.
	require.Len(t, roots, 2)
	assert.Equal(t, "Orphan", roots[0].Title)
}

func TestGroupPages_SingleGroupWhenUnderBudget(t *testing.T) {
	b := NewBuilder()
	groups, err := b.GroupPages([]string{"a", "b", "c"}, []int{10, 10, 10}, 100, 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "abc", groups[0])
}

func TestGroupPages_NeverDropsPages(t *testing.T) {
	b := NewBuilder()
	texts := []string{"p1|", "p2|", "p3|", "p4|", "p5|", "p6|"}
	lengths := []int{500, 500, 500, 500, 500, 500}

	groups, err := b.GroupPages(texts, lengths, 1000, 0)
	require.NoError(t, err)
	require.Greater(t, len(groups), 1)

	joined := strings.Join(groups, "")
	for _, text := range texts {
		assert.Contains(t, joined, text)
	}
}

func TestGroupPages_OverlapSeedsNextGroup(t *testing.T) {
	b := NewBuilder()
	texts := []string{"p1|", "p2|", "p3|", "p4|"}
	lengths := []int{600, 600, 600, 600}

	groups, err := b.GroupPages(texts, lengths, 1200, 1)
	require.NoError(t, err)
	require.Greater(t, len(groups), 1)

	// The page that closed group 0 reappears at the head of group 1.
	last := texts[strings.Count(groups[0], "|")-1]
	assert.True(t, strings.HasPrefix(groups[1], last),
		"group 1 %q should start with overlap page %q", groups[1], last)
}

func TestGroupPages_OversizedSinglePage(t *testing.T) {
	b := NewBuilder()
	groups, err := b.GroupPages([]string{"small|", "huge|", "small2|"}, []int{10, 99999, 10}, 1000, 0)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(groups, ""), "huge|")
}

func TestGroupPages_LengthMismatch(t *testing.T) {
	b := NewBuilder()
	_, err := b.GroupPages([]string{"a"}, []int{1, 2}, 100, 0)
	assert.Error(t, err)
}
