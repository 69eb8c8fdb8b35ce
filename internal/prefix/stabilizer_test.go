package prefix

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs() []NodeRef {
	return []NodeRef{
		{DocID: "doc-b", NodeID: "0003", SectionPath: "2.1", Title: "Labs", StartIndex: 12, EndIndex: 15},
		{DocID: "doc-a", NodeID: "0001", SectionPath: "1", Title: "Face Sheet", StartIndex: 1, EndIndex: 3},
		{DocID: "doc-a", NodeID: "0002", SectionPath: "1.1", Title: "Demographics", StartIndex: 2, EndIndex: 3},
		{DocID: "doc-b", NodeID: "0004", SectionPath: "2.2", Title: "Imaging", StartIndex: 12, EndIndex: 18},
	}
}

func TestStabilize_DeterministicAcrossPermutations(t *testing.T) {
	strategies := []Strategy{ByPageNumber, BySectionPath, ByDocIDPage}
	for _, strategy := range strategies {
		base, err := Stabilize(refs(), strategy)
		require.NoError(t, err)

		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 20; i++ {
			perm := refs()
			rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

			got, err := Stabilize(perm, strategy)
			require.NoError(t, err)
			assert.Equal(t, base, got, "strategy %s permutation %d", strategy, i)
		}
	}
}

func TestStabilize_PageNumberOrder(t *testing.T) {
	got, err := Stabilize(refs(), ByPageNumber)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001", "0002", "0003", "0004"}, ids(got))
}

func TestStabilize_DocIDPageOrder(t *testing.T) {
	got, err := Stabilize(refs(), ByDocIDPage)
	require.NoError(t, err)
	assert.Equal(t, "doc-a", got[0].DocID)
	assert.Equal(t, "doc-b", got[len(got)-1].DocID)
}

func TestStabilize_DoesNotMutateInput(t *testing.T) {
	in := refs()
	_, err := Stabilize(in, ByPageNumber)
	require.NoError(t, err)
	assert.Equal(t, "0003", in[0].NodeID)
}

func TestStabilize_UnknownStrategy(t *testing.T) {
	_, err := Stabilize(refs(), "alphabetical")
	assert.Error(t, err)
}

func TestStabilizeJSON_CanonicalForm(t *testing.T) {
	a := map[string]any{"zebra": 1, "alpha": "ünïcode", "mid": []int{3, 2}}
	b := map[string]any{"mid": []int{3, 2}, "alpha": "ünïcode", "zebra": 1}

	ja, err := StabilizeJSON(a)
	require.NoError(t, err)
	jb, err := StabilizeJSON(b)
	require.NoError(t, err)

	assert.Equal(t, ja, jb)
	assert.Equal(t, `{"alpha":"ünïcode","mid":[3,2],"zebra":1}`, ja)
}

func TestStabilizeJSON_StructKeysSorted(t *testing.T) {
	got, err := StabilizeJSON(NodeRef{NodeID: "0001", Title: "T", StartIndex: 1, EndIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"end_index":2,"node_id":"0001","start_index":1,"title":"T"}`, got)
}

func ids(nodes []NodeRef) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.NodeID
	}
	return out
}
