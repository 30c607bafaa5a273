// Package grader implements the grading pipeline: rubric
// normalization, prompt construction, JSON recovery from LLM output,
// score calibration, and report assembly. A request runs the five
// stages sequentially; nothing below the generative-call boundary
// raises to the caller.
package grader

import (
	"context"
	"log"
	"strconv"
	"strings"
)

// ChatClient is the generative model boundary: a blocking chat call
// returning free-form text expected to contain JSON.
type ChatClient interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Model() string
}

// ExtractFunc converts a document (local path or object ref) to plain
// text. Implementations swallow extraction failures and return "".
type ExtractFunc func(ctx context.Context, path string) string

type Grader struct {
	llm        ChatClient
	calibrator *Calibrator
	extract    ExtractFunc
}

func New(llm ChatClient, calibrator *Calibrator, extract ExtractFunc) *Grader {
	return &Grader{llm: llm, calibrator: calibrator, extract: extract}
}

// Grade runs the full pipeline for one request. It always returns a
// well-formed response: degraded inputs (unreadable document, bad
// rubric) grade anyway, and a failed generative call yields grade 0.0
// with a structured error report.
func (g *Grader) Grade(ctx context.Context, req GradeRequest) GradeResponse {
	text := g.extract(ctx, req.FilePath)
	if text == "" {
		log.Printf("grader: no text extracted from %q for portfolio %d, grading empty document", req.FilePath, req.PortfolioID)
	}

	rubric, rubricSource := NormalizeRubric(req.Rubric)
	prompt := BuildPrompt(rubric, req.PortfolioID, text)

	raw, err := g.llm.Chat(ctx, prompt)
	if err != nil {
		log.Printf("grader: LLM call failed for portfolio %d: %v", req.PortfolioID, err)
		return GradeResponse{
			PortfolioID:    req.PortfolioID,
			AIGrade:        0.0,
			AIReviewReport: renderReport(buildErrorReport(g.llm.Model(), err)),
		}
	}

	llmObj, err := FirstJSON(raw)
	if err != nil {
		log.Printf("grader: unparsable LLM output for portfolio %d: %v", req.PortfolioID, err)
		return GradeResponse{
			PortfolioID:    req.PortfolioID,
			AIGrade:        0.0,
			AIReviewReport: renderReport(buildErrorReport(g.llm.Model(), err)),
		}
	}

	result := parseLLMResult(llmObj)

	rows, total := g.calibrator.Calibrate(result.CriteriaScores)

	var report map[string]any
	if g.calibrator.ModelLoaded() {
		report = buildCalibratedReport(req.PortfolioID, rubricSource, result.OverallComment, rows, total, g.calibrator.ModelPath(), g.llm.Model())
	} else {
		report = buildFallbackReport(req.PortfolioID, rubricSource, llmObj, total)
	}

	return GradeResponse{
		PortfolioID:    req.PortfolioID,
		AIGrade:        total,
		AIReviewReport: renderReport(report),
	}
}

// parseLLMResult coerces the recovered JSON object into the canonical
// result shape. The model's output is duck-typed: fields may be
// missing or mistyped, and each criteria_scores entry is salvaged
// field by field so one bad entry cannot sink the rest.
func parseLLMResult(obj map[string]any) LLMResult {
	var res LLMResult
	if s, ok := obj["overall_comment"].(string); ok {
		res.OverallComment = s
	}
	if s, ok := obj["rubric_id"].(string); ok {
		res.RubricID = s
	}

	entries, ok := obj["criteria_scores"].([]any)
	if !ok {
		return res
	}
	for _, e := range entries {
		em, ok := e.(map[string]any)
		if !ok {
			continue
		}
		cs := CriterionScore{MaxScore: 4}
		cs.CriterionID, _ = em["criterion_id"].(string)
		cs.CriterionName, _ = em["criterion_name"].(string)
		cs.Justification, _ = em["justification"].(string)
		cs.Feedback, _ = em["feedback"].(string)
		if v, ok := asFloat(em["score"]); ok {
			cs.Score = &v
		}
		cs.Weightage, _ = asFloat(em["weightage"])
		cs.WeightedScore, _ = asFloat(em["weighted_score"])
		res.CriteriaScores = append(res.CriteriaScores, cs)
	}
	return res
}

// asFloat coerces the loosely-typed values LLMs emit for numeric
// fields: JSON numbers, but also numbers quoted as strings.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
