package grader

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the grading instruction prompt: assessor persona,
// the rubric as JSON, the portfolio text in a delimited block, the
// scoring rules, and the exact JSON shape the model must return. The
// output contract here is what the JSON extractor is built to survive
// violations of.
func BuildPrompt(r *Rubric, portfolioID int64, portfolioText string) string {
	var b strings.Builder

	b.WriteString("You are an experienced medical education assessor.\n")
	b.WriteString("You must evaluate a reflective portfolio using the OFFICIAL marking rubric.\n\n")

	b.WriteString("==================== RUBRIC (JSON) ====================\n")
	b.WriteString(r.promptJSON())
	b.WriteString("\n\n")

	b.WriteString("==================== PORTFOLIO ====================\n")
	fmt.Fprintf(&b, "Portfolio ID: %d\n", portfolioID)
	b.WriteString("Assignment: Reflective Portfolio\n\n")
	b.WriteString("TEXT:\n\"\"\"\n")
	b.WriteString(portfolioText)
	b.WriteString("\n\"\"\"\n\n")

	b.WriteString("==================== INSTRUCTIONS ====================\n")
	b.WriteString("1. Use ONLY the rubric to decide the score for each criterion.\n")
	b.WriteString("2. Each criterion is scored 0-4 (integer).\n")
	b.WriteString("3. Weightage = the \"weight\" field in the rubric -> Final score for a criterion = score x weight.\n")
	b.WriteString("4. For each criterion you MUST produce:\n")
	b.WriteString("   - score (0-4)\n")
	b.WriteString("   - max_score (always 4)\n")
	b.WriteString("   - weightage (integer from rubric)\n")
	b.WriteString("   - weighted_score = score x weightage\n")
	b.WriteString("   - justification (2-4 sentences)\n")
	b.WriteString("   - feedback (clear, helpful comments)\n")
	b.WriteString("5. Final total_score = sum(weighted_score for all criteria).\n")
	b.WriteString("6. Output MUST be STRICT JSON with this EXACT structure:\n\n")

	b.WriteString("{\n")
	fmt.Fprintf(&b, "  \"portfolio_id\": \"%d\",\n", portfolioID)
	fmt.Fprintf(&b, "  \"rubric_id\": %q,\n", r.RubricID)
	b.WriteString("  \"overall_comment\": \"Overall summary.\",\n")
	b.WriteString("  \"criteria_scores\": [\n")
	for i, c := range r.Criteria {
		fmt.Fprintf(&b,
			"    {\"criterion_id\":%q,\"criterion_name\":%q,\"score\":0,\"max_score\":4,\"weightage\":%d,\"weighted_score\":0,\"justification\":\"...\",\"feedback\":\"...\"}",
			c.CriterionID, c.CriterionName, c.Weight)
		if i < len(r.Criteria)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  ],\n")
	b.WriteString("  \"total_score\": 0\n")
	b.WriteString("}\n\n")

	b.WriteString("IMPORTANT:\n")
	b.WriteString("- DO NOT output markdown.\n")
	b.WriteString("- DO NOT explain your reasoning outside the JSON.\n")
	b.WriteString("- RETURN ONLY VALID JSON (a single JSON object).\n")

	return b.String()
}
