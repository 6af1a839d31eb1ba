package dataprep

import (
	"errors"
	"fmt"

	"github.com/kakaka820/Titanic/pkg/data"
	"github.com/kakaka820/Titanic/pkg/stats"
)

// ErrNoObservedValues means a column needed a statistic but had no values at all.
var ErrNoObservedValues = errors.New("dataprep: column has no observed values")

// ---------- Fill-value estimators ----------

// MedianOf returns the median of the non-missing values.
func MedianOf(col []*float64) (float64, error) {
	nums := make([]float64, 0, len(col))
	for _, v := range col {
		if v != nil {
			nums = append(nums, *v)
		}
	}
	if len(nums) == 0 {
		return 0, ErrNoObservedValues
	}
	return stats.Median(nums)
}

// ModeOf returns the most frequent non-missing string (ties: smallest value).
func ModeOf(col []*string) (string, error) {
	vals := make([]string, 0, len(col))
	for _, v := range col {
		if v != nil {
			vals = append(vals, *v)
		}
	}
	if len(vals) == 0 {
		return "", ErrNoObservedValues
	}
	return stats.ModeString(vals)
}

// BoolModeOf returns the most frequent non-missing flag. A tie yields false,
// since "False" sorts before "True".
func BoolModeOf(col []*bool) (bool, error) {
	vals := make([]*string, len(col))
	for i, v := range col {
		if v != nil {
			s := data.FormatBool(*v)
			vals[i] = &s
		}
	}
	m, err := ModeOf(vals)
	if err != nil {
		return false, err
	}
	return m == "True", nil
}

// ---------- In-place fillers ----------

// FillFloat sets *dst to v when it is missing and reports whether it did.
func FillFloat(dst **float64, v float64) bool {
	if *dst != nil {
		return false
	}
	*dst = &v
	return true
}

// FillString sets *dst to v when it is missing and reports whether it did.
func FillString(dst **string, v string) bool {
	if *dst != nil {
		return false
	}
	*dst = &v
	return true
}

// FillBool sets *dst to v when it is missing and reports whether it did.
func FillBool(dst **bool, v bool) bool {
	if *dst != nil {
		return false
	}
	*dst = &v
	return true
}

func columnErr(col string, err error) error {
	return fmt.Errorf("dataprep: imputing %s: %w", col, err)
}
