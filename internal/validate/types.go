package validate

import "encoding/json"

// FieldEvaluation is the model's judgment of one extracted field.
type FieldEvaluation struct {
	Score       float64 `json:"score"` // 0..10
	Coverage    string  `json:"coverage"`
	Correctness string  `json:"correctness"`
	Issues      string  `json:"issues"`
}

// ValidationResult is the model's quality assessment of an extraction.
// This is self-evaluation: the scores come from the same model class that
// produced the extraction, with no independent ground truth. Treat them as
// a review signal, not a verification.
type ValidationResult struct {
	OverallScore     float64                    `json:"overall_score"` // 0..10, model-reported average
	FieldEvaluations map[string]FieldEvaluation `json:"field_evaluations"`
	Summary          string                     `json:"summary"`
}

// MeanFieldScore is the arithmetic mean of the per-field scores, or 0 when
// there are none. Used only for the consistency warning; the reported
// OverallScore is never corrected locally.
func (r ValidationResult) MeanFieldScore() float64 {
	if len(r.FieldEvaluations) == 0 {
		return 0
	}
	var sum float64
	for _, ev := range r.FieldEvaluations {
		sum += ev.Score
	}
	return sum / float64(len(r.FieldEvaluations))
}

// JSON serializes the result.
func (r ValidationResult) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
