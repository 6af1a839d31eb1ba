package core

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dataset is a named feature matrix with binary labels (1 = positive).
// Rows are shared, not copied, between a Dataset and its subsets.
type Dataset struct {
	Features []string
	X        [][]float64
	Y        []int
}

// NewDataset validates shapes and wraps X and y.
func NewDataset(features []string, X [][]float64, y []int) (*Dataset, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("core: %d rows but %d labels", len(X), len(y))
	}
	for i, row := range X {
		if len(row) != len(features) {
			return nil, fmt.Errorf("core: row %d has %d values, want %d", i, len(row), len(features))
		}
	}
	return &Dataset{Features: features, X: X, Y: y}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.X) }

// NumFeatures returns the number of columns.
func (d *Dataset) NumFeatures() int { return len(d.Features) }

// FeatureIndex returns the column of a named feature.
func (d *Dataset) FeatureIndex(name string) (int, bool) {
	for j, f := range d.Features {
		if f == name {
			return j, true
		}
	}
	return -1, false
}

// Column returns a copy of the named feature column.
func (d *Dataset) Column(name string) ([]float64, error) {
	j, ok := d.FeatureIndex(name)
	if !ok {
		return nil, fmt.Errorf("core: unknown feature %q", name)
	}
	col := make([]float64, len(d.X))
	for i, row := range d.X {
		col[i] = row[j]
	}
	return col, nil
}

// Subset returns the rows at idx, in idx order.
func (d *Dataset) Subset(idx []int) *Dataset {
	s := &Dataset{Features: d.Features, X: make([][]float64, len(idx)), Y: make([]int, len(idx))}
	for k, i := range idx {
		s.X[k] = d.X[i]
		s.Y[k] = d.Y[i]
	}
	return s
}

// ClassCounts returns how many rows carry each label.
func (d *Dataset) ClassCounts() map[int]int {
	counts := make(map[int]int)
	for _, y := range d.Y {
		counts[y]++
	}
	return counts
}

// Dense copies a row-major slice matrix into a gonum Dense.
func Dense(X [][]float64) (*mat.Dense, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, errors.New("core: empty matrix")
	}
	r, c := len(X), len(X[0])
	data := make([]float64, 0, r*c)
	for i, row := range X {
		if len(row) != c {
			return nil, fmt.Errorf("core: row %d has %d values, want %d", i, len(row), c)
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}

// Flatten returns every entry of X in row-major order.
func Flatten(X [][]float64) []float64 {
	n := 0
	for _, row := range X {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range X {
		out = append(out, row...)
	}
	return out
}
