package grader

import (
	"aigs/internal/regressor"
)

// criterionModelIDs translates the rubric's long criterion ids to the
// short ids the regression artifact was trained with.
var criterionModelIDs = map[string]string{
	"C_OVERALL_PRESENTATION_AND_ORGAN":                       "C1_OVERALL",
	"C_SELF_INTRODUCTION":                                    "C2_SELF_INTRO",
	"C_REFLECTION_ON_MORAL_DILEMMA":                          "C3_MORAL_DILEMMA",
	"C_REFLECTION_ON_GROUP_ACTIVITY":                         "C4_GROUP_ACTIVITY",
	"C_REFLECTION_ON_DEVELOPING_EMOTIONAL_INTELLIGENCE":      "C5_EMOTIONAL_INTELLIGENCE",
	"C_DISCUSSION_AND_FUTURE_ACTIVITY_PLAN":                  "C6_FUTURE_PLAN",
	"C_SUPPORTING_DOCUMENTS_INCLUDING_PROFESSIONALISM_INDEX": "C7_PROFESSIONALISM",
	"C_REFLECTION_ON_ATTITUDES_ABOUT_GENDER_AND_SEXUALITY":   "C8_GENDER_ATTITUDES",
}

type Calibrator struct {
	reg *regressor.Service
}

func NewCalibrator(reg *regressor.Service) *Calibrator {
	return &Calibrator{reg: reg}
}

// ModelLoaded reports whether a regression model backs this calibrator.
func (c *Calibrator) ModelLoaded() bool {
	return c.reg != nil && c.reg.Loaded()
}

// ModelPath returns the artifact path, for report metadata.
func (c *Calibrator) ModelPath() string {
	if c.reg == nil {
		return ""
	}
	return c.reg.Path()
}

// Calibrate maps raw criterion scores through the regression model and
// returns the calibrated rows plus the running total. Entries whose
// criterion id has no model mapping, or whose score is missing, are
// dropped: they contribute nothing to the total and produce no row.
//
// With no model loaded, the LLM's own weighted_score values are summed
// instead and no calibrated rows are produced; the caller must surface
// that in the report metadata.
func (c *Calibrator) Calibrate(scores []CriterionScore) ([]CalibratedScore, float64) {
	if !c.ModelLoaded() {
		total := 0.0
		for _, cs := range scores {
			total += cs.WeightedScore
		}
		return nil, total
	}

	var rows []CalibratedScore
	total := 0.0
	for _, cs := range scores {
		modelID, ok := criterionModelIDs[cs.CriterionID]
		if !ok || cs.Score == nil {
			continue
		}

		predicted, ok := c.reg.Predict(*cs.Score, modelID)
		if !ok {
			continue
		}
		// Negative predictions are a modeling artifact, not a grade.
		if predicted < 0 {
			predicted = 0
		}
		total += predicted

		rows = append(rows, CalibratedScore{
			CriterionID:            cs.CriterionID,
			CriterionModelID:       modelID,
			CriterionName:          cs.CriterionName,
			LLMScoreRaw:            *cs.Score,
			Weightage:              cs.Weightage,
			LLMWeightedScore:       cs.WeightedScore,
			PredictedWeightedScore: predicted,
			Justification:          cs.Justification,
			Feedback:               cs.Feedback,
		})
	}
	return rows, total
}
