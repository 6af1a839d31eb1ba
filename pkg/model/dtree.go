package model

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTreeClassifier is a CART-style classifier with axis-aligned
// threshold splits.
type DecisionTreeClassifier struct {
	// Hyperparameters / options
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	Criterion           string  // "gini" (default) or "entropy"
	MaxFeatures         int     // 0 => use all features, >0 => number of features to sample when looking for split
	MinImpurityDecrease float64 // minimal impurity decrease to accept a split
	RandomState         int64   // seed for randomness (feature subsampling)

	// internals
	root        *dtNode
	classes     []int     // sorted class labels (order used by probas)
	importances []float64 // summed weighted impurity decrease per feature
	nFeatures   int
}

// dtNode holds a node in the tree.
type dtNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold => left
	left      *dtNode
	right     *dtNode

	n      int
	probas []float64 // class distribution aligned with tree.classes
}

// Option functional config
type Option func(*DecisionTreeClassifier)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeClassifier) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}
func WithCriterion(c string) Option { return func(t *DecisionTreeClassifier) { t.Criterion = c } }
func WithMaxFeatures(k int) Option  { return func(t *DecisionTreeClassifier) { t.MaxFeatures = k } }
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier returns a fully grown gini tree unless options say otherwise.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{
		MaxDepth:            0,
		MinSamplesSplit:     2,
		MinSamplesLeaf:      1,
		Criterion:           "gini",
		MaxFeatures:         0,
		MinImpurityDecrease: 0.0,
		RandomState:         time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---------------------------
// Public API
// ---------------------------

// Fit trains the tree on every row of X.
func (t *DecisionTreeClassifier) Fit(X [][]float64, y []int) error {
	n, _, err := validate(X, y)
	if err != nil {
		return err
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.fitIndices(X, y, idx, sortedClasses(y))
}

// fitIndices trains on the rows listed in idx. Repeated indices count as
// repeated samples, which is how bootstrap weights reach the tree.
// classes fixes the probability layout so trees of one forest line up.
func (t *DecisionTreeClassifier) fitIndices(X [][]float64, y []int, idx []int, classes []int) error {
	if len(idx) == 0 {
		return errors.New("dtree: no samples")
	}
	t.classes = classes
	t.nFeatures = len(X[0])
	t.importances = make([]float64, t.nFeatures)

	b := &treeBuilder{
		t:        t,
		X:        X,
		y:        y,
		rnd:      rand.New(rand.NewSource(t.RandomState)),
		nClasses: len(classes),
	}
	b.classPos = make(map[int]int, len(classes))
	for i, c := range classes {
		b.classPos[c] = i
	}
	if t.Criterion == "entropy" {
		b.impurity = entropyFromCounts
	} else {
		b.impurity = giniFromCounts
	}

	t.root = b.build(append([]int(nil), idx...), 0)
	return nil
}

// Predict returns the most probable class for each row. Ties go to the smaller label.
func (t *DecisionTreeClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = t.classes[argmaxFloat(t.predictProbaSingle(X[i]))]
	}
	return out
}

// PredictProba returns the per-class probability vectors for rows in X,
// aligned with Classes().
func (t *DecisionTreeClassifier) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = t.predictProbaSingle(X[i])
	}
	return out
}

// Classes returns the sorted class labels.
func (t *DecisionTreeClassifier) Classes() []int { return t.classes }

// NodeCount returns the number of nodes in the fitted tree.
func (t *DecisionTreeClassifier) NodeCount() int { return countNodes(t.root) }

// FeatureImportances returns the normalized mean decrease in impurity per
// feature. A tree that never split returns all zeros.
func (t *DecisionTreeClassifier) FeatureImportances() []float64 {
	out := make([]float64, len(t.importances))
	total := 0.0
	for _, v := range t.importances {
		total += v
	}
	if total <= 0 {
		return out
	}
	for j, v := range t.importances {
		out[j] = v / total
	}
	return out
}

// ---------------------------
// Builder
// ---------------------------

type treeBuilder struct {
	t        *DecisionTreeClassifier
	X        [][]float64
	y        []int
	rnd      *rand.Rand
	nClasses int
	classPos map[int]int
	impurity func([]int) float64
}

// A struct to hold the results of a split search.
type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	nLeft     int
	impL      float64
	impR      float64
}

// pair is a named type for a value and its original index.
type pair struct {
	v float64
	i int
}

func (b *treeBuilder) counts(idx []int) []int {
	c := make([]int, b.nClasses)
	for _, ii := range idx {
		c[b.classPos[b.y[ii]]]++
	}
	return c
}

func (b *treeBuilder) leaf(node *dtNode, counts []int) *dtNode {
	node.isLeaf = true
	node.probas = countsToProbas(counts)
	return node
}

func (b *treeBuilder) build(idx []int, depth int) *dtNode {
	t := b.t
	node := &dtNode{n: len(idx)}
	counts := b.counts(idx)

	// make leaf if pure or too few samples or depth reached
	if isPure(counts) || len(idx) < t.MinSamplesSplit || len(idx) < 2*max(1, t.MinSamplesLeaf) {
		return b.leaf(node, counts)
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return b.leaf(node, counts)
	}

	parentImpurity := b.impurity(counts)
	best, ok := b.bestSplit(idx, counts, parentImpurity)
	if !ok || best.gain < t.MinImpurityDecrease {
		return b.leaf(node, counts)
	}

	var left, right []int
	for _, ii := range idx {
		if b.X[ii][best.feature] <= best.threshold {
			left = append(left, ii)
		} else {
			right = append(right, ii)
		}
	}

	n := float64(len(idx))
	t.importances[best.feature] += n*parentImpurity -
		float64(len(left))*best.impL - float64(len(right))*best.impR

	node.feature = best.feature
	node.threshold = best.threshold
	node.left = b.build(left, depth+1)
	node.right = b.build(right, depth+1)
	return node
}

// bestSplit scans features in random order. With MaxFeatures set it stops
// after that many non-constant features, unless none of them produced a valid split.
func (b *treeBuilder) bestSplit(idx []int, parentCounts []int, parentImpurity float64) (splitResult, bool) {
	t := b.t
	p := t.nFeatures
	features := b.rnd.Perm(p)
	limit := p
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		limit = t.MaxFeatures
	}

	best := splitResult{feature: -1, gain: math.Inf(-1)}
	visited := 0
	pairs := make([]pair, len(idx))
	for _, f := range features {
		if visited >= limit && best.feature >= 0 {
			break
		}
		for k, ii := range idx {
			pairs[k] = pair{b.X[ii][f], ii}
		}
		sort.Slice(pairs, func(a, c int) bool { return pairs[a].v < pairs[c].v })
		if pairs[0].v == pairs[len(pairs)-1].v {
			continue // constant in this node
		}
		visited++
		if r, ok := b.scanFeature(f, pairs, parentCounts, parentImpurity); ok && r.gain > best.gain {
			best = r
		}
	}
	return best, best.feature >= 0
}

// scanFeature walks sorted values once, moving samples from right to left
// and scoring every threshold between distinct values.
func (b *treeBuilder) scanFeature(f int, pairs []pair, parentCounts []int, parentImpurity float64) (splitResult, bool) {
	minLeaf := max(1, b.t.MinSamplesLeaf)
	n := len(pairs)
	left := make([]int, b.nClasses)
	right := append([]int(nil), parentCounts...)

	result := splitResult{feature: -1, gain: math.Inf(-1)}
	for s := 1; s < n; s++ {
		c := b.classPos[b.y[pairs[s-1].i]]
		left[c]++
		right[c]--
		if pairs[s].v == pairs[s-1].v {
			continue
		}
		if s < minLeaf || n-s < minLeaf {
			continue
		}
		impL := b.impurity(left)
		impR := b.impurity(right)
		weighted := (float64(s)*impL + float64(n-s)*impR) / float64(n)
		gain := parentImpurity - weighted
		if gain > result.gain {
			result = splitResult{
				gain:      gain,
				feature:   f,
				threshold: (pairs[s-1].v + pairs[s].v) / 2.0,
				nLeft:     s,
				impL:      impL,
				impR:      impR,
			}
		}
	}
	return result, result.feature >= 0
}

// ---------------------------
// Prediction helper
// ---------------------------

func (t *DecisionTreeClassifier) predictProbaSingle(x []float64) []float64 {
	if t.root == nil {
		p := make([]float64, max(1, len(t.classes)))
		for i := range p {
			p[i] = 1.0 / float64(len(p))
		}
		return p
	}
	node := t.root
	for !node.isLeaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.probas
}

// ---------------------------
// Utilities: impurity & misc
// ---------------------------

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 1.0
	for _, c := range counts {
		p := float64(c) / n
		res -= p * p
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i := range counts {
		p[i] = float64(counts[i]) / float64(n)
	}
	return p
}

func argmaxFloat(arr []float64) int {
	best := 0
	for i := 1; i < len(arr); i++ {
		if arr[i] > arr[best] {
			best = i
		}
	}
	return best
}

func countNodes(n *dtNode) int {
	if n == nil {
		return 0
	}
	return 1 + countNodes(n.left) + countNodes(n.right)
}

func sortedClasses(y []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
