package grader

import "encoding/json"

// Rubric provenance tags recorded in the final report.
const (
	RubricSourceDefault      = "default"
	RubricSourceJSON         = "caller-supplied-json"
	RubricSourceTextFallback = "caller-text-fallback"
)

type Criterion struct {
	CriterionID   string `json:"criterion_id"`
	CriterionName string `json:"criterion_name"`
	Weight        int    `json:"weight"`
}

type Rubric struct {
	RubricID   string      `json:"rubric_id"`
	RubricName string      `json:"rubric_name"`
	Criteria   []Criterion `json:"criteria"`

	// Description carries caller-supplied rubric material that did not
	// parse into criteria; it is forwarded to the LLM as context only.
	Description any `json:"rubric_description,omitempty"`

	// Extra preserves caller-supplied top-level fields on pass-through
	// rubrics so the prompt embeds the rubric exactly as given.
	Extra map[string]json.RawMessage `json:"-"`
}

// DefaultRubric returns the built-in 8-criterion portfolio rubric.
func DefaultRubric() *Rubric {
	return &Rubric{
		RubricID:   "DEFAULT_B33_CA1",
		RubricName: "B33 CA1 Reflective Portfolio (Default)",
		Criteria: []Criterion{
			{"C_OVERALL_PRESENTATION_AND_ORGAN", "Overall presentation and organization of content", 3},
			{"C_SELF_INTRODUCTION", "Self-introduction", 2},
			{"C_REFLECTION_ON_MORAL_DILEMMA", "Reflection on moral dilemma", 4},
			{"C_REFLECTION_ON_GROUP_ACTIVITY", "Reflection on group activity", 4},
			{"C_REFLECTION_ON_DEVELOPING_EMOTIONAL_INTELLIGENCE", "Reflection on developing emotional intelligence", 4},
			{"C_DISCUSSION_AND_FUTURE_ACTIVITY_PLAN", "Discussion and future activity plan", 3},
			{"C_SUPPORTING_DOCUMENTS_INCLUDING_PROFESSIONALISM_INDEX", "Supporting documents including professionalism index", 2},
			{"C_REFLECTION_ON_ATTITUDES_ABOUT_GENDER_AND_SEXUALITY", "Reflection on attitudes about gender and sexuality", 3},
		},
	}
}

// NormalizeRubric turns an optional caller-supplied rubric string into a
// canonical rubric plus a provenance tag. It never fails: anything that
// does not parse degrades to the default rubric with the caller's input
// attached as description.
func NormalizeRubric(s string) (*Rubric, string) {
	if s == "" {
		return DefaultRubric(), RubricSourceDefault
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		r := DefaultRubric()
		r.Description = s
		return r, RubricSourceTextFallback
	}

	if critRaw, ok := raw["criteria"]; ok {
		var criteria []Criterion
		if err := json.Unmarshal(critRaw, &criteria); err == nil {
			// Caller is trusted: pass the rubric through as-is, no
			// weight or shape validation.
			r := &Rubric{Criteria: criteria, Extra: map[string]json.RawMessage{}}
			if idRaw, ok := raw["rubric_id"]; ok {
				_ = json.Unmarshal(idRaw, &r.RubricID)
			}
			if nameRaw, ok := raw["rubric_name"]; ok {
				_ = json.Unmarshal(nameRaw, &r.RubricName)
			}
			for k, v := range raw {
				switch k {
				case "criteria", "rubric_id", "rubric_name":
				default:
					r.Extra[k] = v
				}
			}
			return r, RubricSourceJSON
		}
	}

	// Valid JSON but not our shape: keep defaults, preserve any caller
	// rubric_id/rubric_name, and carry the object as description.
	r := DefaultRubric()
	if idRaw, ok := raw["rubric_id"]; ok {
		var id string
		if json.Unmarshal(idRaw, &id) == nil && id != "" {
			r.RubricID = id
		}
	}
	if nameRaw, ok := raw["rubric_name"]; ok {
		var name string
		if json.Unmarshal(nameRaw, &name) == nil && name != "" {
			r.RubricName = name
		}
	}
	var desc any
	_ = json.Unmarshal([]byte(s), &desc)
	r.Description = desc
	return r, RubricSourceJSON
}

// promptJSON renders the rubric as indented JSON for the prompt,
// including any preserved pass-through fields.
func (r *Rubric) promptJSON() string {
	obj := map[string]any{
		"criteria": r.Criteria,
	}
	if r.RubricID != "" {
		obj["rubric_id"] = r.RubricID
	}
	if r.RubricName != "" {
		obj["rubric_name"] = r.RubricName
	}
	if r.Description != nil {
		obj["rubric_description"] = r.Description
	}
	for k, v := range r.Extra {
		obj[k] = v
	}
	b, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
