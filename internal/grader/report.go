package grader

import "encoding/json"

// buildCalibratedReport assembles the review report for the path where
// a regression model recalibrated each criterion.
func buildCalibratedReport(portfolioID int64, rubricSource, overallComment string, rows []CalibratedScore, total float64, modelPath, ollamaModel string) map[string]any {
	return map[string]any{
		"portfolio_id":    portfolioID,
		"rubric_source":   rubricSource,
		"overall_comment": overallComment,
		"criteria":        rows,
		"ai_total_score":  total,
		"calibration": map[string]any{
			"regressor_loaded": true,
			"model_path":       modelPath,
			"ollama_model":     ollamaModel,
		},
	}
}

// buildFallbackReport assembles the review report for the degraded
// path where no regression model is available and the LLM's own
// weighted scores stand in for calibrated values.
func buildFallbackReport(portfolioID int64, rubricSource string, llmResult map[string]any, total float64) map[string]any {
	return map[string]any{
		"portfolio_id":  portfolioID,
		"rubric_source": rubricSource,
		"llm":           llmResult,
		"calibration": map[string]any{
			"regressor_loaded": false,
			"note":             "regression model not loaded; using LLM weighted_score as AI grade.",
		},
		"ai_total_score": total,
	}
}

// buildErrorReport assembles the terminal error payload returned when
// the generative call (or JSON recovery from its output) fails.
func buildErrorReport(ollamaModel string, err error) map[string]any {
	return map[string]any{
		"error":        "LLM grading failed. Ensure Ollama is running and the model is pulled.",
		"ollama_model": ollamaModel,
		"details":      err.Error(),
	}
}

// renderReport formats a report for the ai_review_report field.
// Reports are read by humans, so they are indented.
func renderReport(report map[string]any) string {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return `{"error":"report serialization failed"}`
	}
	return string(b)
}
