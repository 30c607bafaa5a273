package grader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRubric(t *testing.T) {
	r := DefaultRubric()
	require.Len(t, r.Criteria, 8)
	assert.Equal(t, "DEFAULT_B33_CA1", r.RubricID)

	wantWeights := []int{3, 2, 4, 4, 4, 3, 2, 3}
	sum := 0
	seen := map[string]bool{}
	for i, c := range r.Criteria {
		assert.Equal(t, wantWeights[i], c.Weight)
		assert.False(t, seen[c.CriterionID], "duplicate criterion id %s", c.CriterionID)
		seen[c.CriterionID] = true
		sum += c.Weight
	}
	assert.Equal(t, 25, sum)
}

func TestNormalizeRubricMissing(t *testing.T) {
	r, source := NormalizeRubric("")
	assert.Equal(t, RubricSourceDefault, source)
	assert.Len(t, r.Criteria, 8)
	assert.Nil(t, r.Description)
}

func TestNormalizeRubricPassThrough(t *testing.T) {
	in := `{"rubric_id":"R1","rubric_name":"Custom","criteria":[{"criterion_id":"C_A","criterion_name":"A","weight":10}],"notes":"strict"}`
	r, source := NormalizeRubric(in)
	assert.Equal(t, RubricSourceJSON, source)
	require.Len(t, r.Criteria, 1)
	assert.Equal(t, "C_A", r.Criteria[0].CriterionID)
	assert.Equal(t, 10, r.Criteria[0].Weight)
	assert.Equal(t, "R1", r.RubricID)
	assert.Equal(t, "Custom", r.RubricName)
	// Unknown top-level fields survive into the prompt rendering.
	assert.Contains(t, r.Extra, "notes")
	assert.Contains(t, r.promptJSON(), "strict")
}

func TestNormalizeRubricJSONWithoutCriteria(t *testing.T) {
	in := `{"rubric_id":"R2","description":"score generously"}`
	r, source := NormalizeRubric(in)
	assert.Equal(t, RubricSourceJSON, source)
	// Defaults kick in, caller identity is preserved.
	assert.Len(t, r.Criteria, 8)
	assert.Equal(t, "R2", r.RubricID)
	require.NotNil(t, r.Description)
	desc, ok := r.Description.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "score generously", desc["description"])
}

func TestNormalizeRubricPlainText(t *testing.T) {
	in := "Grade on effort, originality and clarity."
	r, source := NormalizeRubric(in)
	assert.Equal(t, RubricSourceTextFallback, source)
	assert.Len(t, r.Criteria, 8)
	assert.Equal(t, in, r.Description)
}

func TestNormalizeRubricNeverPanics(t *testing.T) {
	for _, in := range []string{"{", "[1,2,3]", `"just a string"`, "null", `{"criteria":"not a list"}`} {
		r, source := NormalizeRubric(in)
		require.NotNil(t, r, "input %q", in)
		assert.Len(t, r.Criteria, 8, "input %q degrades to defaults", in)
		assert.NotEqual(t, RubricSourceDefault, source)
	}
}
