package report

import "github.com/abhisek/seatutor/internal/llm"

// InsightSchema defines the JSON schema for dashboard insights.
var InsightSchema = &llm.Schema{
	Name:        "class-insight",
	Description: "Teacher-facing summary of practice results with strengths, focus areas and next steps",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-4 sentence overview written for the teacher",
			},
			"strengths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "What is going well, one short point each",
			},
			"focus_areas": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Strands or habits that need attention",
			},
			"suggestions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Concrete classroom activities for the coming week",
			},
		},
		"required":             []any{"summary", "strengths", "focus_areas", "suggestions"},
		"additionalProperties": false,
	},
}
