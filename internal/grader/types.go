package grader

import "encoding/json"

// CriterionScore is one rubric criterion as scored by the LLM (raw stage).
type CriterionScore struct {
	CriterionID   string   `json:"criterion_id"`
	CriterionName string   `json:"criterion_name"`
	Score         *float64 `json:"score"`
	MaxScore      int      `json:"max_score"`
	Weightage     float64  `json:"weightage"`
	WeightedScore float64  `json:"weighted_score"`
	Justification string   `json:"justification"`
	Feedback      string   `json:"feedback"`
}

// CalibratedScore is a CriterionScore passed through the regression model.
type CalibratedScore struct {
	CriterionID            string  `json:"criterion_id"`
	CriterionModelID       string  `json:"criterion_model_id"`
	CriterionName          string  `json:"criterion_name"`
	LLMScoreRaw            float64 `json:"llm_score_raw_0_4"`
	Weightage              float64 `json:"weightage"`
	LLMWeightedScore       float64 `json:"llm_weighted_score"`
	PredictedWeightedScore float64 `json:"predicted_weighted_score"`
	Justification          string  `json:"justification"`
	Feedback               string  `json:"feedback"`
}

// LLMResult is the JSON object the model is asked to return.
type LLMResult struct {
	PortfolioID    json.RawMessage  `json:"portfolio_id,omitempty"`
	RubricID       string           `json:"rubric_id,omitempty"`
	OverallComment string           `json:"overall_comment,omitempty"`
	CriteriaScores []CriterionScore `json:"criteria_scores"`
	TotalScore     json.RawMessage  `json:"total_score,omitempty"`
}

// GradeRequest is the record the API/worker boundary hands to the pipeline.
type GradeRequest struct {
	PortfolioID int64  `json:"portfolio_id"`
	FilePath    string `json:"file_path"`
	Rubric      string `json:"rubric,omitempty"`
}

// GradeResponse is what the boundary sends back: a numeric grade for
// ranking plus a formatted JSON report for review.
type GradeResponse struct {
	PortfolioID    int64   `json:"portfolio_id"`
	AIGrade        float64 `json:"ai_grade"`
	AIReviewReport string  `json:"ai_review_report"`
}
