package analysis

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kakaka820/Titanic/pkg/core"
	"github.com/kakaka820/Titanic/pkg/loader"
	"github.com/kakaka820/Titanic/pkg/model"
	"github.com/kakaka820/Titanic/pkg/stats"
)

// Candidate is a named model family under comparison.
type Candidate struct {
	Name string
	New  model.Factory
}

// DefaultCandidates is the fixed model set, in report order. Random Forest
// and SVM draw their own randomness from the clock.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{"Logistic Regression", func() model.Classifier { return model.NewLogisticRegression() }},
		{"Random Forest", func() model.Classifier { return model.NewRandomForest() }},
		{"Gradient Boosting", func() model.Classifier { return model.NewGradientBoosting() }},
		{"SVM", func() model.Classifier { return model.NewSVM() }},
	}
}

// Comparator scores each candidate by stratified k-fold cross-validation and
// by accuracy on a held-out split.
type Comparator struct {
	Candidates []Candidate
	Folds      int
	TestRatio  float64
	SplitSeed  int64
	Logger     logrus.FieldLogger
}

// Compare evaluates every candidate on ds. Metrics come back in candidate order.
func (c *Comparator) Compare(ctx context.Context, ds *core.Dataset) ([]Metric, error) {
	n := ds.Len()
	k := min(c.Folds, n)
	folds, err := loader.StratifiedKFold(ds.Y, k)
	if err != nil {
		return nil, fmt.Errorf("analysis: cross-validation folds: %w", err)
	}
	train, test, err := loader.TrainTestSplit(n, c.TestRatio, rand.New(rand.NewSource(c.SplitSeed)))
	if err != nil {
		return nil, fmt.Errorf("analysis: train/test split: %w", err)
	}
	trainSet, testSet := ds.Subset(train), ds.Subset(test)

	metrics := make([]Metric, 0, len(c.Candidates))
	for _, cand := range c.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cv, err := crossValidate(ctx, cand, ds, folds)
		if err != nil {
			return nil, fmt.Errorf("analysis: %s: cross-validation: %w", cand.Name, err)
		}

		m := cand.New()
		if err := m.Fit(trainSet.X, trainSet.Y); err != nil {
			return nil, fmt.Errorf("analysis: %s: fit: %w", cand.Name, err)
		}
		acc := model.Score(m, testSet.X, testSet.Y)

		if c.Logger != nil {
			c.Logger.WithFields(logrus.Fields{
				"model":    cand.Name,
				"accuracy": acc,
				"cv_score": cv,
				"folds":    k,
			}).Info("model evaluated")
		}
		metrics = append(metrics, Metric{Model: cand.Name, Accuracy: acc, CVScore: cv})
	}
	return metrics, nil
}

// crossValidate fits one fresh model per fold concurrently and returns the
// mean fold accuracy.
func crossValidate(ctx context.Context, cand Candidate, ds *core.Dataset, folds [][]int) (float64, error) {
	scores := make([]float64, len(folds))
	g, ctx := errgroup.WithContext(ctx)
	for f := range folds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tr := ds.Subset(loader.TrainIndices(folds, f))
			te := ds.Subset(folds[f])
			m := cand.New()
			if err := m.Fit(tr.X, tr.Y); err != nil {
				return fmt.Errorf("fold %d: %w", f, err)
			}
			scores[f] = model.Score(m, te.X, te.Y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return stats.Mean(scores)
}
