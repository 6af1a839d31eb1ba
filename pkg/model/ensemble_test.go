package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomForestImportances(t *testing.T) {
	X, y := blobs(40, 11)
	rf := NewRandomForest(WithNEstimators(30), WithForestSeed(42))
	require.NoError(t, rf.Fit(X, y))

	imp := rf.FeatureImportances()
	require.Len(t, imp, 2)
	assert.InDelta(t, 1.0, sum(imp), 1e-9)
	assert.Greater(t, imp[0], imp[1])
	assert.Len(t, rf.Trees, 30)

	again := NewRandomForest(WithNEstimators(30), WithForestSeed(42))
	require.NoError(t, again.Fit(X, y))
	assert.Equal(t, imp, again.FeatureImportances(), "same seed, same forest")
}

func TestRandomForestUniformWithoutSplits(t *testing.T) {
	X := [][]float64{{1, 0, 3}, {2, 1, 3}, {3, 0, 3}}
	rf := NewRandomForest(WithNEstimators(5), WithForestSeed(1))
	require.NoError(t, rf.Fit(X, []int{0, 0, 0}))

	imp := rf.FeatureImportances()
	for _, v := range imp {
		assert.InDelta(t, 1.0/3, v, 1e-12)
	}
}

func TestRandomForestProba(t *testing.T) {
	X, y := blobs(20, 2)
	rf := NewRandomForest(WithNEstimators(10), WithForestSeed(3))
	require.NoError(t, rf.Fit(X, y))
	for _, p := range rf.PredictProba(X) {
		assert.InDelta(t, 1.0, sum(p), 1e-9)
	}
	assert.Error(t, NewRandomForest(WithNEstimators(0)).Fit(X, y))
}

func TestGradientBoostingLossDecreases(t *testing.T) {
	X, y := blobs(20, 4)
	gb := NewGradientBoosting(WithStages(20))
	require.NoError(t, gb.Fit(X, y))
	require.Len(t, gb.TrainLoss, 20)
	assert.Less(t, gb.TrainLoss[19], gb.TrainLoss[0])

	scores := gb.DecisionFunction([][]float64{{-2, 0}, {2, 0}})
	assert.Less(t, scores[0], 0.0)
	assert.Greater(t, scores[1], 0.0)
}

func TestLogisticRegressionWeights(t *testing.T) {
	X, y := blobs(30, 6)
	lr := NewLogisticRegression()
	require.NoError(t, lr.Fit(X, y))
	require.Len(t, lr.W, 2)
	assert.Greater(t, lr.W[0], 0.0)

	probs := lr.PredictProba([][]float64{{-3, 0.5}, {3, 0.5}})
	assert.Less(t, probs[0], 0.5)
	assert.Greater(t, probs[1], 0.5)
}

func TestSVMSupportVectors(t *testing.T) {
	X, y := blobs(25, 8)
	svm := NewSVM(WithSVMSeed(1))
	require.NoError(t, svm.Fit(X, y))
	assert.Greater(t, svm.NumSupportVectors(), 0)
	assert.LessOrEqual(t, svm.NumSupportVectors(), len(X))

	d := svm.DecisionFunction([][]float64{{-2, 0.5}, {2, 0.5}})
	assert.Less(t, d[0], 0.0)
	assert.Greater(t, d[1], 0.0)
}

func TestKernelCacheEvicts(t *testing.T) {
	calls := 0
	c := newKernelCache(2, func(i int) []float64 { calls++; return []float64{float64(i)} })
	c.row(0)
	c.row(1)
	c.row(0)
	assert.Equal(t, 2, calls)
	c.row(2) // evicts 0
	c.row(0)
	assert.Equal(t, 4, calls)
}
