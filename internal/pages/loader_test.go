package pages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apsscout/pagetree/internal/tree"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadJSONStringArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	writeFile(t, path, `["first page", "second page"]`)

	pages, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, "first page", pages[0].Text)
	assert.Equal(t, 2, pages[1].PageNumber)
}

func TestLoadJSONObjectArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	writeFile(t, path, `[{"page_number": 5, "text": "late page"}, {"text": "untagged"}]`)

	pages, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 5, pages[0].PageNumber)
	assert.Equal(t, "late page", pages[0].Text)
	assert.Equal(t, 2, pages[1].PageNumber)
}

func TestLoadJSONWrapper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	writeFile(t, path, `{"pages": ["a", "b", "c"]}`)

	pages, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, pages, 3)
}

func TestLoadDirNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "page_10.txt"), "tenth")
	writeFile(t, filepath.Join(dir, "page_2.txt"), "second")
	writeFile(t, filepath.Join(dir, "page_1.txt"), "first")

	pages, err := Load(dir, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "first", pages[0].Text)
	assert.Equal(t, "second", pages[1].Text)
	assert.Equal(t, "tenth", pages[2].Text)
	assert.Equal(t, 3, pages[2].PageNumber)
}

func TestLoadDirGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "page_1.txt"), "keep")
	writeFile(t, filepath.Join(dir, "notes.md"), "skip")
	writeFile(t, filepath.Join(dir, "sub", "page_2.txt"), "nested")

	pages, err := Load(dir, LoadOptions{Glob: "**/*.txt"})
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestLoadDirNoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.md"), "x")

	_, err := Load(dir, LoadOptions{})
	assert.Error(t, err)
}

func TestLoadRejectsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, "text")

	_, err := Load(path, LoadOptions{})
	assert.Error(t, err)
}

func TestContentHashStable(t *testing.T) {
	pages := []tree.PageContent{
		{PageNumber: 1, Text: "alpha"},
		{PageNumber: 2, Text: "beta"},
	}
	a := ContentHash(pages)
	b := ContentHash(pages)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)

	// Page boundaries matter.
	merged := []tree.PageContent{{PageNumber: 1, Text: "alphabeta"}}
	assert.NotEqual(t, a, ContentHash(merged))
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("page_2.txt", "page_10.txt"))
	assert.False(t, naturalLess("page_10.txt", "page_2.txt"))
	assert.True(t, naturalLess("a.txt", "b.txt"))
}
