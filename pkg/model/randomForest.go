package model

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// RandomForest for classification
type RandomForest struct {
	// Hyperparameters / options
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 => sqrt(p)
	Bootstrap       bool
	RandomState     int64

	// Internal state
	Trees     []*DecisionTreeClassifier
	classes   []int
	nFeatures int
}

// RandomForestOption functional config for RandomForest
type RandomForestOption func(*RandomForest)

func WithNEstimators(n int) RandomForestOption { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithBootstrap(b bool) RandomForestOption  { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestSeed(seed int64) RandomForestOption {
	return func(rf *RandomForest) { rf.RandomState = seed }
}
func WithForestMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}

// NewRandomForest initializes the forest with sensible defaults.
// Without WithForestSeed the forest is seeded from the clock.
func NewRandomForest(opts ...RandomForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		Bootstrap:       true,
		RandomState:     time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the random forest.
// Trees see bootstrap index samples rather than copies of X.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	n, p, err := validate(X, y)
	if err != nil {
		return err
	}
	if rf.NEstimators < 1 {
		return fmt.Errorf("randomforest: n_estimators must be positive, got %d", rf.NEstimators)
	}
	rf.classes = sortedClasses(y)
	rf.nFeatures = p

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(p))))
	}

	rf.Trees = make([]*DecisionTreeClassifier, rf.NEstimators)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < rf.NEstimators; i++ {
		idx := i
		g.Go(func() error {
			// Use a new rand source for each goroutine to avoid contention
			treeRand := rand.New(rand.NewSource(rf.RandomState + int64(idx)))

			sampleIndices := make([]int, n)
			for j := 0; j < n; j++ {
				if rf.Bootstrap {
					sampleIndices[j] = treeRand.Intn(n)
				} else {
					sampleIndices[j] = j
				}
			}

			tree := NewDecisionTreeClassifier(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithRandomState(treeRand.Int63()),
			)
			if err := tree.fitIndices(X, y, sampleIndices, rf.classes); err != nil {
				return fmt.Errorf("randomforest: tree %d: %w", idx, err)
			}
			rf.Trees[idx] = tree
			return nil
		})
	}
	return g.Wait()
}

// PredictProba averages the class distributions of all trees.
func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = make([]float64, len(rf.classes))
	}
	for _, t := range rf.Trees {
		for i, pr := range t.PredictProba(X) {
			for c, v := range pr {
				out[i][c] += v
			}
		}
	}
	for i := range out {
		for c := range out[i] {
			out[i][c] /= float64(len(rf.Trees))
		}
	}
	return out
}

// Predict returns the class with the highest averaged probability.
func (rf *RandomForest) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, pr := range rf.PredictProba(X) {
		out[i] = rf.classes[argmaxFloat(pr)]
	}
	return out
}

// FeatureImportances averages the per-tree normalized impurity decreases over
// the trees that split at least once, then renormalizes. When no tree split
// every feature gets the same share.
func (rf *RandomForest) FeatureImportances() []float64 {
	out := make([]float64, rf.nFeatures)
	if rf.nFeatures == 0 {
		return out
	}
	used := 0
	for _, t := range rf.Trees {
		imp := t.FeatureImportances()
		s := 0.0
		for _, v := range imp {
			s += v
		}
		if s == 0 {
			continue
		}
		used++
		for j, v := range imp {
			out[j] += v
		}
	}
	total := 0.0
	for _, v := range out {
		total += v
	}
	if used == 0 || total == 0 {
		for j := range out {
			out[j] = 1.0 / float64(rf.nFeatures)
		}
		return out
	}
	for j := range out {
		out[j] /= total
	}
	return out
}
