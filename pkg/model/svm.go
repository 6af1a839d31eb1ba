package model

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kakaka820/Titanic/pkg/core"
	"github.com/kakaka820/Titanic/pkg/stats"
)

const (
	svmTau         = 1e-12
	svmMaxIter     = 10_000_000
	svmCacheBudget = 128 << 20 // bytes of cached kernel rows
)

// SVM is a binary soft-margin support vector classifier with an RBF kernel,
// trained by sequential minimal optimization with second-order working set
// selection.
type SVM struct {
	C     float64
	Gamma float64 // <= 0 => 1 / (p * Var(X))
	Tol   float64
	// RandomState orders the training rows before optimization.
	RandomState int64

	sv       [][]float64
	coef     []float64 // alpha_i * y_i for each support vector
	svNorm   []float64
	rho      float64
	gamma    float64
	classes  []int
	constant *int
}

// SVMOption configures an SVM.
type SVMOption func(*SVM)

func WithSVMC(c float64) SVMOption         { return func(s *SVM) { s.C = c } }
func WithSVMGamma(g float64) SVMOption     { return func(s *SVM) { s.Gamma = g } }
func WithSVMSeed(seed int64) SVMOption     { return func(s *SVM) { s.RandomState = seed } }
func WithSVMTolerance(t float64) SVMOption { return func(s *SVM) { s.Tol = t } }

// NewSVM returns an RBF SVM with C = 1 and the variance-scaled gamma.
func NewSVM(opts ...SVMOption) *SVM {
	s := &SVM{C: 1.0, Tol: 1e-3, RandomState: time.Now().UnixNano()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fit solves the dual problem. A single-class y yields a constant predictor.
func (s *SVM) Fit(X [][]float64, y []int) error {
	n, p, err := validate(X, y)
	if err != nil {
		return err
	}
	s.constant = nil
	s.sv, s.coef, s.svNorm = nil, nil, nil
	if c, ok := singleClass(y); ok {
		s.constant = &c
		return nil
	}
	s.classes = sortedClasses(y)
	if len(s.classes) != 2 {
		return fmt.Errorf("svm: need 2 classes, got %d", len(s.classes))
	}
	if s.C <= 0 {
		return fmt.Errorf("svm: C must be positive, got %v", s.C)
	}

	s.gamma = s.Gamma
	if s.gamma <= 0 {
		v := stats.PopVariance(core.Flatten(X))
		if v > 0 {
			s.gamma = 1.0 / (float64(p) * v)
		} else {
			s.gamma = 1.0
		}
	}

	order := rand.New(rand.NewSource(s.RandomState)).Perm(n)
	xs := make([][]float64, n)
	ys := make([]float64, n)
	for k, i := range order {
		xs[k] = X[i]
		if y[i] == s.classes[1] {
			ys[k] = 1
		} else {
			ys[k] = -1
		}
	}

	sol := newSMO(xs, ys, s.C, s.gamma, s.Tol)
	sol.solve()

	for i, a := range sol.alpha {
		if a > 0 {
			s.sv = append(s.sv, xs[i])
			s.coef = append(s.coef, a*ys[i])
			s.svNorm = append(s.svNorm, sol.norm[i])
		}
	}
	s.rho = sol.rho()
	return nil
}

// DecisionFunction returns sum(alpha_i y_i K(x_i, x)) - rho per row.
func (s *SVM) DecisionFunction(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for r, x := range X {
		xn := floats.Dot(x, x)
		d := -s.rho
		for i, v := range s.sv {
			d += s.coef[i] * rbf(s.gamma, s.svNorm[i], xn, floats.Dot(v, x))
		}
		out[r] = d
	}
	return out
}

// Predict labels rows with a positive decision value as the larger class.
func (s *SVM) Predict(X [][]float64) []int {
	if s.constant != nil {
		return constantPredictions(len(X), *s.constant)
	}
	out := make([]int, len(X))
	for i, d := range s.DecisionFunction(X) {
		if d > 0 {
			out[i] = s.classes[1]
		} else {
			out[i] = s.classes[0]
		}
	}
	return out
}

// NumSupportVectors returns how many training rows ended with alpha > 0.
func (s *SVM) NumSupportVectors() int { return len(s.sv) }

func rbf(gamma, na, nb, dot float64) float64 {
	d := na + nb - 2*dot
	if d < 0 {
		d = 0
	}
	return math.Exp(-gamma * d)
}

// smo holds the solver state for one dual problem.
type smo struct {
	x     [][]float64
	y     []float64
	c     float64
	gamma float64
	eps   float64

	alpha []float64
	grad  []float64
	norm  []float64
	cache *kernelCache
}

func newSMO(x [][]float64, y []float64, c, gamma, eps float64) *smo {
	n := len(x)
	s := &smo{
		x: x, y: y, c: c, gamma: gamma, eps: eps,
		alpha: make([]float64, n),
		grad:  make([]float64, n),
		norm:  make([]float64, n),
	}
	for i := range x {
		s.norm[i] = floats.Dot(x[i], x[i])
		s.grad[i] = -1
	}
	rows := max(2, svmCacheBudget/(8*max(1, n)))
	s.cache = newKernelCache(rows, s.kernelRow)
	return s
}

func (s *smo) kernelRow(i int) []float64 {
	row := make([]float64, len(s.x))
	for j := range s.x {
		row[j] = rbf(s.gamma, s.norm[i], s.norm[j], floats.Dot(s.x[i], s.x[j]))
	}
	return row
}

func (s *smo) upperBound(i int) bool { return s.alpha[i] >= s.c }
func (s *smo) lowerBound(i int) bool { return s.alpha[i] <= 0 }

// inUp reports whether alpha_i can move in the +y_i direction.
func (s *smo) inUp(i int) bool {
	if s.y[i] > 0 {
		return !s.upperBound(i)
	}
	return !s.lowerBound(i)
}

func (s *smo) inLow(i int) bool {
	if s.y[i] > 0 {
		return !s.lowerBound(i)
	}
	return !s.upperBound(i)
}

// selectPair returns the maximal violating pair, or ok=false once the KKT gap
// falls below eps.
func (s *smo) selectPair() (int, int, bool) {
	gmax, gmax2 := math.Inf(-1), math.Inf(-1)
	i := -1
	for t := range s.alpha {
		if s.inUp(t) {
			if v := -s.y[t] * s.grad[t]; v >= gmax {
				gmax, i = v, t
			}
		}
	}
	if i < 0 {
		return 0, 0, false
	}
	ki := s.cache.row(i)

	j := -1
	bestObj := math.Inf(1)
	for t := range s.alpha {
		if !s.inLow(t) {
			continue
		}
		yg := s.y[t] * s.grad[t]
		if yg >= gmax2 {
			gmax2 = yg
		}
		b := gmax + yg
		if b <= 0 {
			continue
		}
		a := ki[i] + s.cache.diag(t) - 2*ki[t]
		if a <= 0 {
			a = svmTau
		}
		if obj := -(b * b) / a; obj <= bestObj {
			bestObj, j = obj, t
		}
	}
	if gmax+gmax2 < s.eps || j < 0 {
		return 0, 0, false
	}
	return i, j, true
}

func (s *smo) solve() {
	for iter := 0; iter < svmMaxIter; iter++ {
		i, j, ok := s.selectPair()
		if !ok {
			return
		}
		ki, kj := s.cache.row(i), s.cache.row(j)
		oldI, oldJ := s.alpha[i], s.alpha[j]
		c := s.c

		quad := ki[i] + kj[j] - 2*ki[j]
		if quad <= 0 {
			quad = svmTau
		}
		if s.y[i] != s.y[j] {
			delta := (-s.grad[i] - s.grad[j]) / quad
			diff := s.alpha[i] - s.alpha[j]
			s.alpha[i] += delta
			s.alpha[j] += delta
			if diff > 0 {
				if s.alpha[j] < 0 {
					s.alpha[j], s.alpha[i] = 0, diff
				}
			} else if s.alpha[i] < 0 {
				s.alpha[i], s.alpha[j] = 0, -diff
			}
			if diff > 0 {
				if s.alpha[i] > c {
					s.alpha[i], s.alpha[j] = c, c-diff
				}
			} else if s.alpha[j] > c {
				s.alpha[j], s.alpha[i] = c, c+diff
			}
		} else {
			delta := (s.grad[i] - s.grad[j]) / quad
			sum := s.alpha[i] + s.alpha[j]
			s.alpha[i] -= delta
			s.alpha[j] += delta
			if sum > c {
				if s.alpha[i] > c {
					s.alpha[i], s.alpha[j] = c, sum-c
				}
			} else if s.alpha[j] < 0 {
				s.alpha[j], s.alpha[i] = 0, sum
			}
			if sum > c {
				if s.alpha[j] > c {
					s.alpha[j], s.alpha[i] = c, sum-c
				}
			} else if s.alpha[i] < 0 {
				s.alpha[i], s.alpha[j] = 0, sum
			}
		}

		dI, dJ := s.alpha[i]-oldI, s.alpha[j]-oldJ
		for k := range s.grad {
			s.grad[k] += s.y[k] * (s.y[i]*ki[k]*dI + s.y[j]*kj[k]*dJ)
		}
	}
}

// rho averages y_i*G_i over free vectors, or takes the midpoint of the
// feasible interval when every alpha sits at a bound.
func (s *smo) rho() float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	free, sumFree := 0, 0.0
	for i := range s.alpha {
		yg := s.y[i] * s.grad[i]
		switch {
		case s.upperBound(i):
			if s.y[i] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.lowerBound(i):
			if s.y[i] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			free++
			sumFree += yg
		}
	}
	if free > 0 {
		return sumFree / float64(free)
	}
	return (ub + lb) / 2
}

// kernelCache keeps at most cap kernel rows, evicting the oldest first.
type kernelCache struct {
	cap   int
	rows  map[int][]float64
	order []int
	fill  func(int) []float64
}

func newKernelCache(capacity int, fill func(int) []float64) *kernelCache {
	return &kernelCache{cap: capacity, rows: make(map[int][]float64), fill: fill}
}

func (c *kernelCache) row(i int) []float64 {
	if r, ok := c.rows[i]; ok {
		return r
	}
	if len(c.order) >= c.cap {
		delete(c.rows, c.order[0])
		c.order = c.order[1:]
	}
	r := c.fill(i)
	c.rows[i] = r
	c.order = append(c.order, i)
	return r
}

// diag is K(x_i, x_i), which is always 1 for the RBF kernel.
func (c *kernelCache) diag(int) float64 { return 1 }
