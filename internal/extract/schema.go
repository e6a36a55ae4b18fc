package extract

// BuildExtractionJSONSchema returns the JSON-Schema gate for extraction
// responses. The field set is caller-defined at request time, so the schema
// only pins the envelope: a JSON object whose values are scalars, string
// lists, or lists of flat objects.
func BuildExtractionJSONSchema() map[string]any {
	scalar := map[string]any{
		"type": []string{"string", "number", "boolean", "null"},
	}
	return map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"anyOf": []any{
				scalar,
				map[string]any{"type": "array"},
				map[string]any{"type": "object"},
			},
		},
	}
}
