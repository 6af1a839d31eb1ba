package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput     = errors.New("model: empty input")
	ErrLengthMismatch = errors.New("model: X and y length mismatch")
	ErrNotFitted      = errors.New("model: not fitted")
)

// Classifier is a supervised learner over dense float features and integer labels.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
}

// FeatureRanker exposes per-feature importance scores aligned with the
// columns the model was fitted on.
type FeatureRanker interface {
	FeatureImportances() []float64
}

// Factory builds a fresh, unfitted classifier.
type Factory func() Classifier

// validate checks X/y shapes and returns (rows, columns).
func validate(X [][]float64, y []int) (int, int, error) {
	if len(X) == 0 {
		return 0, 0, ErrEmptyInput
	}
	if len(y) != len(X) {
		return 0, 0, fmt.Errorf("%w: %d rows, %d labels", ErrLengthMismatch, len(X), len(y))
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return 0, 0, fmt.Errorf("model: row %d has %d features, want %d", i, len(X[i]), p)
		}
	}
	return len(X), p, nil
}

// singleClass reports whether every label is the same, and which.
func singleClass(y []int) (int, bool) {
	for _, v := range y[1:] {
		if v != y[0] {
			return 0, false
		}
	}
	return y[0], true
}

func constantPredictions(n, label int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = label
	}
	return out
}
