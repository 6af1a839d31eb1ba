package model

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/kakaka820/Titanic/pkg/NeuralNetwork"
	"github.com/kakaka820/Titanic/pkg/core"
)

// LogisticRegression (binary) with sigmoid.
// Training minimizes the L2-penalized log-loss with L-BFGS; the intercept is
// not penalized.
type LogisticRegression struct {
	W       []float64 // weights
	b       float64   // bias
	C       float64   // inverse regularization strength
	MaxIter int

	classes  []int // classes[1] is the positive label
	constant *int
}

// NewLogisticRegression returns a model with C = 1 and 1000 iterations.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1.0, MaxIter: 1000}
}

// Fit estimates the weights. A single-class y yields a constant predictor.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	n, p, err := validate(X, y)
	if err != nil {
		return err
	}
	m.constant = nil
	if c, ok := singleClass(y); ok {
		m.constant = &c
		m.classes = []int{c}
		return nil
	}
	m.classes = sortedClasses(y)
	if len(m.classes) != 2 {
		return fmt.Errorf("logistic: need 2 classes, got %d", len(m.classes))
	}

	A, err := core.Dense(X)
	if err != nil {
		return err
	}
	target := make([]float64, n)
	for i, v := range y {
		if v == m.classes[1] {
			target[i] = 1
		}
	}

	z := mat.NewVecDense(n, nil)
	resid := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(p, nil)
	margins := func(theta []float64) {
		z.MulVec(A, mat.NewVecDense(p, theta[:p]))
		for i := 0; i < n; i++ {
			z.SetVec(i, z.AtVec(i)+theta[p])
		}
	}

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			margins(theta)
			loss := 0.0
			for i := 0; i < n; i++ {
				loss += NeuralNetwork.LogLoss(z.AtVec(i), target[i])
			}
			reg := 0.0
			for _, w := range theta[:p] {
				reg += w * w
			}
			return 0.5*reg + m.C*loss
		},
		Grad: func(g, theta []float64) {
			margins(theta)
			sum := 0.0
			for i := 0; i < n; i++ {
				r := NeuralNetwork.Sigmoid(z.AtVec(i)) - target[i]
				resid.SetVec(i, r)
				sum += r
			}
			grad.MulVec(A.T(), resid)
			for j := 0; j < p; j++ {
				g[j] = theta[j] + m.C*grad.AtVec(j)
			}
			g[p] = m.C * sum
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   m.MaxIter,
		GradientThreshold: 1e-4,
	}
	res, err := optimize.Minimize(problem, make([]float64, p+1), settings, &optimize.LBFGS{})
	if res == nil {
		return fmt.Errorf("logistic: %w", err)
	}
	// Hitting the iteration limit still leaves a usable estimate.
	for _, v := range res.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("logistic: optimizer diverged (%v)", res.Status)
		}
	}
	m.W = append([]float64(nil), res.X[:p]...)
	m.b = res.X[p]
	return nil
}

// PredictProba returns the probability of the positive class for each input row in X.
// Rows are split across GOMAXPROCS workers.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	out := make([]float64, len(X))
	if m.constant != nil {
		return out
	}
	var wg sync.WaitGroup

	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, len(X))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = NeuralNetwork.Sigmoid(m.decision(X[i]))
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// Predict thresholds PredictProba at 0.5.
func (m *LogisticRegression) Predict(X [][]float64) []int {
	if m.constant != nil {
		return constantPredictions(len(X), *m.constant)
	}
	probs := m.PredictProba(X)
	out := make([]int, len(X))
	for i, p := range probs {
		if p > 0.5 {
			out[i] = m.classes[1]
		} else {
			out[i] = m.classes[0]
		}
	}
	return out
}

// Intercept returns the fitted bias term.
func (m *LogisticRegression) Intercept() float64 { return m.b }

func (m *LogisticRegression) decision(x []float64) float64 {
	s := m.b
	for j, w := range m.W {
		s += w * x[j]
	}
	return s
}
