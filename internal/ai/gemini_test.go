package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPlain(t *testing.T) {
	raw, err := extractJSON(`{"bmi": 22.5, "category": "normal"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bmi": 22.5, "category": "normal"}`, string(raw))
}

func TestExtractJSONFenced(t *testing.T) {
	reply := "```json\n{\"recipes\": [{\"name\": \"dal\"}]}\n```"
	raw, err := extractJSON(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"recipes": [{"name": "dal"}]}`, string(raw))
}

func TestExtractJSONFencedWithoutLanguage(t *testing.T) {
	reply := "```\n{\"ok\": true}\n```"
	raw, err := extractJSON(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(raw))
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	reply := "Here is the analysis you asked for:\n```json\n{\"advice\": \"walk more\"}\n```\nHope this helps!"
	raw, err := extractJSON(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"advice": "walk more"}`, string(raw))
}

func TestExtractJSONWhitespace(t *testing.T) {
	raw, err := extractJSON("\n\n  {\"a\": 1}  \n")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(raw))
}

func TestExtractJSONInvalid(t *testing.T) {
	_, err := extractJSON("I cannot answer that as JSON, sorry.")
	require.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"x":1}`, stripCodeFence("```json\n{\"x\":1}\n```"))
	assert.Equal(t, `{"x":1}`, stripCodeFence("```\n{\"x\":1}\n```"))
	assert.Equal(t, "", stripCodeFence(`{"x":1}`))
	assert.Equal(t, "", stripCodeFence("```json\n{\"x\":1}"))
}
