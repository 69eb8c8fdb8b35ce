package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wildcardKey(name string) Key {
	return Key{
		Domain: DomainAPS, Category: CategoryRetrieval, Name: name,
		LOB: Wildcard, Department: Wildcard, UseCase: Wildcard, Process: Wildcard,
	}
}

func TestResolveExactMatchWins(t *testing.T) {
	src := NewMemorySource()
	src.Register(wildcardKey("greeting"), "generic")
	src.Register(Key{
		Domain: DomainAPS, Category: CategoryRetrieval, Name: "greeting",
		LOB: "life", Department: "claims", UseCase: "aps_review", Process: "intake",
	}, "specific")

	r := NewRegistry(src)
	got, err := r.Resolve(DomainAPS, CategoryRetrieval, "greeting", ResolutionContext{
		LOB: "life", Department: "claims", UseCase: "aps_review", Process: "intake",
	})
	require.NoError(t, err)
	assert.Equal(t, "specific", got)
}

func TestResolveRelaxationOrder(t *testing.T) {
	src := NewMemorySource()
	// Registered with process wildcarded but use_case kept.
	src.Register(Key{
		Domain: DomainAPS, Category: CategoryRetrieval, Name: "greeting",
		LOB: "life", Department: "claims", UseCase: "aps_review", Process: Wildcard,
	}, "use-case level")
	src.Register(wildcardKey("greeting"), "generic")

	r := NewRegistry(src)
	got, err := r.Resolve(DomainAPS, CategoryRetrieval, "greeting", ResolutionContext{
		LOB: "life", Department: "claims", UseCase: "aps_review", Process: "intake",
	})
	require.NoError(t, err)
	assert.Equal(t, "use-case level", got)
}

func TestResolveFallsBackToWildcards(t *testing.T) {
	src := NewMemorySource()
	src.Register(wildcardKey("greeting"), "generic")

	r := NewRegistry(src)
	got, err := r.Resolve(DomainAPS, CategoryRetrieval, "greeting", ResolutionContext{
		LOB: "disability", Department: "underwriting",
	})
	require.NoError(t, err)
	assert.Equal(t, "generic", got)
}

func TestResolveEmptyContextIsWildcard(t *testing.T) {
	src := NewMemorySource()
	src.Register(wildcardKey("greeting"), "generic")

	r := NewRegistry(src)
	got, err := r.Resolve(DomainAPS, CategoryRetrieval, "greeting", ResolutionContext{})
	require.NoError(t, err)
	assert.Equal(t, "generic", got)
}

func TestResolveMissingTemplate(t *testing.T) {
	r := NewRegistry(NewMemorySource())
	_, err := r.Resolve(DomainAPS, CategoryRetrieval, "absent", ResolutionContext{})
	assert.Error(t, err)
}

func TestResolveSourceOrder(t *testing.T) {
	override := NewMemorySource()
	override.Register(wildcardKey("greeting"), "override")
	builtin := NewMemorySource()
	builtin.Register(wildcardKey("greeting"), "builtin")

	r := NewRegistry(override, builtin)
	got, err := r.Resolve(DomainAPS, CategoryRetrieval, "greeting", ResolutionContext{})
	require.NoError(t, err)
	assert.Equal(t, "override", got)
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	r := DefaultRegistry()
	for _, tc := range []struct{ category, name string }{
		{CategoryIndexing, NameTOCDetection},
		{CategoryIndexing, NameStructureScan},
		{CategoryIndexing, NameNodeSummary},
		{CategoryRetrieval, NameRetrieveSystem},
		{CategoryRetrieval, NameRetrieveQuery},
		{CategoryRetrieval, NameRetrieveBatch},
	} {
		got, err := r.Resolve(DomainAPS, tc.category, tc.name, ResolutionContext{})
		require.NoError(t, err, "%s/%s", tc.category, tc.name)
		assert.NotEmpty(t, got)
	}
}

func TestRender(t *testing.T) {
	out := Render("Question: {{query}} (top {{top_k}})", map[string]string{
		"query": "diagnosis date",
		"top_k": "5",
	})
	assert.Equal(t, "Question: diagnosis date (top 5)", out)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("{{known}} {{unknown}}", map[string]string{"known": "x"})
	assert.Equal(t, "x {{unknown}}", out)
}
