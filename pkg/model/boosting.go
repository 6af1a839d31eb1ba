package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/kakaka820/Titanic/pkg/NeuralNetwork"
)

// GradientBoosting is a binary classifier built from shallow regression trees
// fitted to the log-loss gradient. Leaves take one Newton step.
type GradientBoosting struct {
	NEstimators  int
	LearningRate float64
	MaxDepth     int

	// TrainLoss holds the mean log-loss on the training data after each stage.
	TrainLoss []float64

	init     float64
	stages   []*regNode
	classes  []int
	constant *int
}

// BoostingOption configures a GradientBoosting.
type BoostingOption func(*GradientBoosting)

func WithStages(n int) BoostingOption { return func(g *GradientBoosting) { g.NEstimators = n } }
func WithLearningRate(lr float64) BoostingOption {
	return func(g *GradientBoosting) { g.LearningRate = lr }
}
func WithStageDepth(d int) BoostingOption { return func(g *GradientBoosting) { g.MaxDepth = d } }

// NewGradientBoosting defaults to 100 stages, learning rate 0.1 and depth 3.
func NewGradientBoosting(opts ...BoostingOption) *GradientBoosting {
	g := &GradientBoosting{NEstimators: 100, LearningRate: 0.1, MaxDepth: 3}
	for _, o := range opts {
		o(g)
	}
	return g
}

// regNode is a node of a regression tree over residuals.
type regNode struct {
	feature   int
	threshold float64
	left      *regNode
	right     *regNode
	value     float64
	leaf      bool
}

func (n *regNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// Fit runs NEstimators boosting stages starting from the log-odds of the prior.
func (g *GradientBoosting) Fit(X [][]float64, y []int) error {
	n, _, err := validate(X, y)
	if err != nil {
		return err
	}
	g.constant = nil
	g.stages = nil
	g.TrainLoss = nil
	if c, ok := singleClass(y); ok {
		g.constant = &c
		return nil
	}
	g.classes = sortedClasses(y)
	if len(g.classes) != 2 {
		return fmt.Errorf("boosting: need 2 classes, got %d", len(g.classes))
	}

	target := make([]float64, n)
	pos := 0.0
	for i, v := range y {
		if v == g.classes[1] {
			target[i] = 1
			pos++
		}
	}
	g.init = NeuralNetwork.Logit(pos / float64(n))

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = g.init
	}
	prob := make([]float64, n)
	resid := make([]float64, n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	for s := 0; s < g.NEstimators; s++ {
		for i := range raw {
			prob[i] = NeuralNetwork.Sigmoid(raw[i])
			resid[i] = target[i] - prob[i]
		}
		b := &regBuilder{X: X, resid: resid, prob: prob, maxDepth: g.MaxDepth}
		tree := b.build(append([]int(nil), idx...), 0)
		g.stages = append(g.stages, tree)
		for i := range raw {
			raw[i] += g.LearningRate * tree.predict(X[i])
			prob[i] = NeuralNetwork.Sigmoid(raw[i])
		}
		loss, _ := NeuralNetwork.BCE(target, prob)
		g.TrainLoss = append(g.TrainLoss, loss)
	}
	return nil
}

// DecisionFunction returns the raw log-odds score per row.
func (g *GradientBoosting) DecisionFunction(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		s := g.init
		for _, t := range g.stages {
			s += g.LearningRate * t.predict(x)
		}
		out[i] = s
	}
	return out
}

// Predict labels rows whose score is positive with the larger class.
func (g *GradientBoosting) Predict(X [][]float64) []int {
	if g.constant != nil {
		return constantPredictions(len(X), *g.constant)
	}
	out := make([]int, len(X))
	for i, s := range g.DecisionFunction(X) {
		if s > 0 {
			out[i] = g.classes[1]
		} else {
			out[i] = g.classes[0]
		}
	}
	return out
}

type regBuilder struct {
	X        [][]float64
	resid    []float64
	prob     []float64
	maxDepth int
}

// newtonValue is sum(r) / sum(p(1-p)) over the leaf.
func (b *regBuilder) newtonValue(idx []int) float64 {
	num, den := 0.0, 0.0
	for _, i := range idx {
		num += b.resid[i]
		den += b.prob[i] * (1 - b.prob[i])
	}
	if math.Abs(den) < 1e-150 {
		return 0
	}
	return num / den
}

func (b *regBuilder) build(idx []int, depth int) *regNode {
	if depth >= b.maxDepth || len(idx) < 2 {
		return &regNode{leaf: true, value: b.newtonValue(idx)}
	}
	f, thr, ok := b.bestSplit(idx)
	if !ok {
		return &regNode{leaf: true, value: b.newtonValue(idx)}
	}
	var left, right []int
	for _, i := range idx {
		if b.X[i][f] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &regNode{
		feature:   f,
		threshold: thr,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit maximizes nL*nR/n * (meanL - meanR)^2 over all thresholds.
func (b *regBuilder) bestSplit(idx []int) (int, float64, bool) {
	n := len(idx)
	total := 0.0
	for _, i := range idx {
		total += b.resid[i]
	}

	bestF, bestThr, bestScore := -1, 0.0, 0.0
	pairs := make([]pair, n)
	for f := range b.X[0] {
		for k, i := range idx {
			pairs[k] = pair{b.X[i][f], i}
		}
		sort.Slice(pairs, func(a, c int) bool { return pairs[a].v < pairs[c].v })

		sumL := 0.0
		for s := 1; s < n; s++ {
			sumL += b.resid[pairs[s-1].i]
			if pairs[s].v == pairs[s-1].v {
				continue
			}
			nL, nR := float64(s), float64(n-s)
			diff := sumL/nL - (total-sumL)/nR
			score := nL * nR / float64(n) * diff * diff
			if score > bestScore {
				bestF, bestThr, bestScore = f, (pairs[s-1].v+pairs[s].v)/2.0, score
			}
		}
	}
	return bestF, bestThr, bestF >= 0
}
