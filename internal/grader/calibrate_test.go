package grader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aigs/internal/regressor"
)

func f(v float64) *float64 { return &v }

func calibratorWithModel(t *testing.T, artifact string) *Calibrator {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0644))
	return NewCalibrator(regressor.New(path))
}

func calibratorWithoutModel(t *testing.T) *Calibrator {
	t.Helper()
	return NewCalibrator(regressor.New(filepath.Join(t.TempDir(), "absent.json")))
}

func TestCalibrateEmptyList(t *testing.T) {
	for name, c := range map[string]*Calibrator{
		"with model":    calibratorWithModel(t, `{"criteria":{"C2_SELF_INTRO":{"slope":2,"intercept":0}}}`),
		"without model": calibratorWithoutModel(t),
	} {
		rows, total := c.Calibrate(nil)
		assert.Empty(t, rows, name)
		assert.Equal(t, 0.0, total, name)
	}
}

func TestCalibrateNoModelFallsBackToWeightedScores(t *testing.T) {
	c := calibratorWithoutModel(t)
	require.False(t, c.ModelLoaded())

	scores := []CriterionScore{
		{CriterionID: "C_SELF_INTRODUCTION", Score: f(3), WeightedScore: 6},
		{CriterionID: "C_REFLECTION_ON_MORAL_DILEMMA", Score: f(2), WeightedScore: 8},
	}
	rows, total := c.Calibrate(scores)
	assert.Nil(t, rows)
	assert.InDelta(t, 14.0, total, 1e-9)
}

func TestCalibratePredicts(t *testing.T) {
	c := calibratorWithModel(t, `{"criteria":{"C2_SELF_INTRO":{"slope":2,"intercept":0},"C3_MORAL_DILEMMA":{"slope":3,"intercept":1}}}`)
	require.True(t, c.ModelLoaded())

	scores := []CriterionScore{
		{CriterionID: "C_SELF_INTRODUCTION", CriterionName: "Self-introduction", Score: f(3), Weightage: 2, WeightedScore: 6, Justification: "well organised", Feedback: "good"},
		{CriterionID: "C_REFLECTION_ON_MORAL_DILEMMA", Score: f(2), Weightage: 4, WeightedScore: 8},
	}
	rows, total := c.Calibrate(scores)
	require.Len(t, rows, 2)

	assert.Equal(t, "C2_SELF_INTRO", rows[0].CriterionModelID)
	assert.InDelta(t, 6.0, rows[0].PredictedWeightedScore, 1e-9)
	assert.Equal(t, 3.0, rows[0].LLMScoreRaw)
	assert.Equal(t, 6.0, rows[0].LLMWeightedScore)
	assert.Equal(t, "well organised", rows[0].Justification)

	assert.InDelta(t, 7.0, rows[1].PredictedWeightedScore, 1e-9)
	assert.InDelta(t, 13.0, total, 1e-9)
}

func TestCalibrateClampsNegativePredictions(t *testing.T) {
	c := calibratorWithModel(t, `{"criteria":{"C2_SELF_INTRO":{"slope":-5,"intercept":0},"C1_OVERALL":{"slope":2,"intercept":0}}}`)

	scores := []CriterionScore{
		{CriterionID: "C_SELF_INTRODUCTION", Score: f(3)},
		{CriterionID: "C_OVERALL_PRESENTATION_AND_ORGAN", Score: f(2)},
	}
	rows, total := c.Calibrate(scores)
	require.Len(t, rows, 2)
	assert.Equal(t, 0.0, rows[0].PredictedWeightedScore)
	assert.InDelta(t, 4.0, total, 1e-9)
}

func TestCalibrateDropsUnmappedAndScorelessEntries(t *testing.T) {
	c := calibratorWithModel(t, `{"criteria":{"C2_SELF_INTRO":{"slope":2,"intercept":0}}}`)

	scores := []CriterionScore{
		{CriterionID: "C_NOT_IN_RUBRIC", Score: f(4), WeightedScore: 16},
		{CriterionID: "C_SELF_INTRODUCTION"}, // score missing
		{CriterionID: "C_SELF_INTRODUCTION", Score: f(3)},
	}
	rows, total := c.Calibrate(scores)
	require.Len(t, rows, 1)
	assert.Equal(t, "C_SELF_INTRODUCTION", rows[0].CriterionID)
	assert.InDelta(t, 6.0, total, 1e-9)
}

func TestCalibrateDropsCriteriaAbsentFromArtifact(t *testing.T) {
	// Mapped criterion, but the artifact was trained without it.
	c := calibratorWithModel(t, `{"criteria":{"C2_SELF_INTRO":{"slope":2,"intercept":0}}}`)

	scores := []CriterionScore{
		{CriterionID: "C_REFLECTION_ON_MORAL_DILEMMA", Score: f(4), WeightedScore: 16},
	}
	rows, total := c.Calibrate(scores)
	assert.Empty(t, rows)
	assert.Equal(t, 0.0, total)
}
