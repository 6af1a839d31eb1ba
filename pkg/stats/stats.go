package stats

import (
	"errors"
	"sort"

	mstats "github.com/montanaflynn/stats"
	gstat "gonum.org/v1/gonum/stat"
)

// ErrEmpty is returned when a statistic is requested over no values.
var ErrEmpty = errors.New("stats: empty input")

// Mean computes the average of a slice.
func Mean(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmpty
	}
	return mstats.Mean(x)
}

// Median returns the median of x; even-length input averages the two middle values.
func Median(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmpty
	}
	return mstats.Median(x)
}

// PopVariance is the population variance (divides by n).
func PopVariance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, v := gstat.PopMeanVariance(x, nil)
	return v
}

// Sum returns the sum of all elements in the slice.
func Sum(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v
	}
	return s
}

// ModeString returns the most frequent value. Ties go to the
// lexicographically smallest value so the result does not depend on row order.
func ModeString(x []string) (string, error) {
	if len(x) == 0 {
		return "", ErrEmpty
	}
	counts := make(map[string]int)
	for _, v := range x {
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mode, best := keys[0], counts[keys[0]]
	for _, k := range keys[1:] {
		if counts[k] > best {
			mode, best = k, counts[k]
		}
	}
	return mode, nil
}
