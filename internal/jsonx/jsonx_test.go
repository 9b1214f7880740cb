package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Strict(t *testing.T) {
	doc, err := Parse(`{"thoughts":"hmm","publicComment":"Yes."}`)
	require.NoError(t, err)
	assert.Equal(t, "hmm", doc.String("thoughts"))
	assert.Equal(t, "Yes.", doc.String("publicComment"))
}

func TestParse_ExtractsFirstBalancedObject(t *testing.T) {
	text := "Sure! Here you go:\n{\"chosen\": \"Bob\", \"note\": \"use {braces} in text\"}\nThanks {not json}"
	doc, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "Bob", doc.String("chosen"))
	assert.Equal(t, "use {braces} in text", doc.String("note"))
}

func TestParse_CodeFence(t *testing.T) {
	doc, err := Parse("```json\n{\"userResponse\": \"Draft\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Draft", doc.String("userResponse"))
}

func TestParse_SkipsInvalidCandidate(t *testing.T) {
	doc, err := Parse(`{oops} then {"a": "b"}`)
	require.NoError(t, err)
	assert.Equal(t, "b", doc.String("a"))
}

func TestParse_NoJSON(t *testing.T) {
	_, err := Parse("I cannot answer that.")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = Parse(`{"unterminated": "x"`)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestAliasesAndDefaults(t *testing.T) {
	doc, err := Parse(`{"reasoning": "because", "response": "Sure.", "empty": "  ", "n": 5}`)
	require.NoError(t, err)

	assert.Equal(t, "because", doc.String("thoughts", "thinking", "reasoning"))
	assert.Equal(t, "Sure.", doc.String("publicComment", "summary", "response", "message"))
	assert.Equal(t, "No thoughts recorded.", doc.StringOr("No thoughts recorded.", "thoughts", "thinking"))
	assert.Equal(t, "fallback", doc.StringOr("fallback", "empty"))
	assert.Equal(t, "5", doc.String("n"))
}

func TestArraysAndMaps(t *testing.T) {
	doc, err := Parse(`{"panelists":[{"firstName":"Ana"},{"firstName":"Ben"}],"reasoning":{"Ana":"quiet","Ben":"asked"}}`)
	require.NoError(t, err)

	items := doc.Array("personas", "panelists")
	require.Len(t, items, 2)
	assert.Equal(t, "Ben", items[1].String("firstName"))

	m, keys := doc.StringMap("reasoning")
	assert.Equal(t, []string{"Ana", "Ben"}, keys)
	assert.Equal(t, "asked", m["Ben"])

	root, err := Parse(`[{"firstName":"Cy"}]`)
	require.NoError(t, err)
	assert.True(t, root.IsArray())
	assert.Len(t, root.Items(), 1)
	assert.Nil(t, doc.Items())
}
