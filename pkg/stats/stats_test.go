package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even averages the middle pair", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Median(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	_, err := Median(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestMeanAndVariance(t *testing.T) {
	m, err := Mean([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, m, 1e-12)

	assert.InDelta(t, 1.25, PopVariance([]float64{1, 2, 3, 4}), 1e-12)
	assert.Zero(t, PopVariance(nil))
	assert.Equal(t, 10.0, Sum([]float64{1, 2, 3, 4}))
}

func TestModeString(t *testing.T) {
	m, err := ModeString([]string{"Mars", "Earth", "Mars"})
	require.NoError(t, err)
	assert.Equal(t, "Mars", m)

	m, err = ModeString([]string{"Mars", "Europa", "Earth", "Mars", "Earth"})
	require.NoError(t, err)
	assert.Equal(t, "Earth", m, "ties resolve to the smallest value")

	_, err = ModeString(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}
