package grader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstJSONRecoversObject(t *testing.T) {
	want := map[string]any{"overall_comment": "ok", "total_score": float64(12)}

	tests := []struct {
		name string
		raw  string
	}{
		{"bare object", `{"overall_comment":"ok","total_score":12}`},
		{"fenced with language tag", "```json\n{\"overall_comment\":\"ok\",\"total_score\":12}\n```"},
		{"fenced with uppercase tag", "```JSON\n{\"overall_comment\":\"ok\",\"total_score\":12}\n```"},
		{"fenced without tag", "```\n{\"overall_comment\":\"ok\",\"total_score\":12}\n```"},
		{"leading prose", "Here is the grading result you asked for:\n{\"overall_comment\":\"ok\",\"total_score\":12}"},
		{"trailing prose", "{\"overall_comment\":\"ok\",\"total_score\":12}\nLet me know if you need anything else."},
		{"prose both sides", "Sure!\n{\"overall_comment\":\"ok\",\"total_score\":12}\nHope this helps."},
		{"surrounding whitespace", "\n\n  {\"overall_comment\":\"ok\",\"total_score\":12}  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFirstJSONPrefersFirstObject(t *testing.T) {
	raw := `{"attempt":1} and then restated: {"attempt":2}`
	got, err := FirstJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"attempt": float64(1)}, got)
}

func TestFirstJSONPrefersFencedFragment(t *testing.T) {
	// Prose before the fence contains a brace-free mention; the fenced
	// fragment is the intended document.
	raw := "The result is below.\n```json\n{\"score\": 3}\n```\n{\"score\": 4}"
	got, err := FirstJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"score": float64(3)}, got)
}

func TestFirstJSONSkipsFalseStarts(t *testing.T) {
	// The first brace opens an unterminated object; the scan must move
	// on and find the complete one.
	raw := `{"broken": and here is the real one {"fixed": true}`
	got, err := FirstJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"fixed": true}, got)
}

func TestFirstJSONNestedObject(t *testing.T) {
	raw := "output: {\"criteria_scores\":[{\"criterion_id\":\"C_SELF_INTRODUCTION\",\"score\":3}],\"overall_comment\":\"ok\"}"
	got, err := FirstJSON(raw)
	require.NoError(t, err)
	scores, ok := got["criteria_scores"].([]any)
	require.True(t, ok)
	require.Len(t, scores, 1)
	entry := scores[0].(map[string]any)
	assert.Equal(t, "C_SELF_INTRODUCTION", entry["criterion_id"])
	assert.Equal(t, float64(3), entry["score"])
}

func TestFirstJSONEmptyOutput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\n"} {
		_, err := FirstJSON(raw)
		assert.ErrorIs(t, err, ErrEmptyOutput)
	}
}

func TestFirstJSONNoJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no brace at all", "I cannot grade this portfolio."},
		{"only an open brace", "here { and nothing closes"},
		{"braces but never valid", "{,} {not json} {{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FirstJSON(tt.raw)
			assert.ErrorIs(t, err, ErrNoJSON)
		})
	}
}
