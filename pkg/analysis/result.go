package analysis

import (
	"encoding/json"
	"fmt"
	"io"
)

// Importance is one feature's share of the forest's impurity decrease.
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Metric is the evaluation of one model family.
type Metric struct {
	Model    string  `json:"model"`
	Accuracy float64 `json:"accuracy"`
	CVScore  float64 `json:"cv_score"`
}

// Result is the document written at the end of a run.
type Result struct {
	Importances       []Importance `json:"importances"`
	Metrics           []Metric     `json:"metrics"`
	SuggestedFeatures []string     `json:"suggestedFeatures"`
}

// NewResult assembles a Result. importances must already be sorted; the
// first top names become the suggestions.
func NewResult(importances []Importance, metrics []Metric, top int) *Result {
	k := max(0, min(top, len(importances)))
	suggested := make([]string, k)
	for i := range suggested {
		suggested[i] = importances[i].Feature
	}
	if importances == nil {
		importances = []Importance{}
	}
	if metrics == nil {
		metrics = []Metric{}
	}
	return &Result{Importances: importances, Metrics: metrics, SuggestedFeatures: suggested}
}

// WriteJSON encodes r to w. The document is marshaled in full before the
// first byte is written.
func (r *Result) WriteJSON(w io.Writer) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("analysis: encoding result: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("analysis: writing result: %w", err)
	}
	return nil
}
