package validate

// BuildValidationJSONSchema returns the JSON-Schema gate for validation
// responses: overall score and every per-field score must sit in [0, 10],
// and the three top-level keys are required.
func BuildValidationJSONSchema() map[string]any {
	scoreProp := map[string]any{"type": "number", "minimum": 0.0, "maximum": 10.0}
	return map[string]any{
		"type":     "object",
		"required": []string{"overall_score", "field_evaluations", "summary"},
		"properties": map[string]any{
			"overall_score": scoreProp,
			"summary":       map[string]any{"type": "string"},
			"field_evaluations": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":     "object",
					"required": []string{"score"},
					"properties": map[string]any{
						"score":       scoreProp,
						"coverage":    map[string]any{"type": "string"},
						"correctness": map[string]any{"type": "string"},
						"issues":      map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
