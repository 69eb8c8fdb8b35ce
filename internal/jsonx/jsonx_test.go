package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainJSON(t *testing.T) {
	var v map[string]any
	err := Extract(`{"node_list": ["0001", "0002"]}`, &v)
	require.NoError(t, err)
	assert.Len(t, v["node_list"], 2)
}

func TestExtractJSONFence(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"answer\": \"yes\"}\n```\nDone."
	var v map[string]string
	require.NoError(t, Extract(raw, &v))
	assert.Equal(t, "yes", v["answer"])
}

func TestExtractGenericFence(t *testing.T) {
	raw := "```\n[1, 2, 3]\n```"
	var v []int
	require.NoError(t, Extract(raw, &v))
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestExtractEmbeddedObject(t *testing.T) {
	raw := `The relevant nodes are {"nodes": ["0003"]} as requested.`
	var v map[string][]string
	require.NoError(t, Extract(raw, &v))
	assert.Equal(t, []string{"0003"}, v["nodes"])
}

func TestExtractNestedBraces(t *testing.T) {
	raw := `prefix {"outer": {"inner": [1, {"deep": true}]}} suffix`
	var v map[string]any
	require.NoError(t, Extract(raw, &v))
	assert.Contains(t, v, "outer")
}

func TestExtractBracesInsideStrings(t *testing.T) {
	raw := `text {"title": "Section } with brace", "ok": true} more`
	var v map[string]any
	require.NoError(t, Extract(raw, &v))
	assert.Equal(t, "Section } with brace", v["title"])
}

func TestExtractRepairsTrailingComma(t *testing.T) {
	raw := `{"items": ["a", "b",], "count": 2,}`
	var v map[string]any
	require.NoError(t, Extract(raw, &v))
	assert.EqualValues(t, 2, v["count"])
}

func TestExtractRepairsPythonLiterals(t *testing.T) {
	raw := `{"summary": None, "found": True, "missing": False}`
	var v map[string]any
	require.NoError(t, Extract(raw, &v))
	assert.Nil(t, v["summary"])
	assert.Equal(t, true, v["found"])
	assert.Equal(t, false, v["missing"])
}

func TestExtractNoJSON(t *testing.T) {
	var v map[string]any
	err := Extract("no structured data here at all", &v)
	assert.Error(t, err)
}

func TestExtractString(t *testing.T) {
	out, err := ExtractString("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, out)
}

func TestRepairLeavesValidJSONAlone(t *testing.T) {
	in := `{"text": "None of the above, True story"}`
	var v map[string]string
	require.NoError(t, Extract(in, &v))
	assert.Equal(t, "None of the above, True story", v["text"])
}
