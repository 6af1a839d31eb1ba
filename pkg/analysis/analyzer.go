package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kakaka820/Titanic/pkg/core"
	"github.com/kakaka820/Titanic/pkg/data"
	"github.com/kakaka820/Titanic/pkg/dataprep"
	"github.com/kakaka820/Titanic/pkg/pipeline"
)

// ErrTooFewRows is returned when the data cannot be split for evaluation.
var ErrTooFewRows = errors.New("analysis: need at least 2 rows")

// Options tunes a run. Zero fields fall back to DefaultOptions.
type Options struct {
	Seed        int64
	Trees       int
	Folds       int
	TestRatio   float64
	TopFeatures int
}

// DefaultOptions: seed 42, 100 trees, 5 folds, 20% test split, top 5 features.
func DefaultOptions() Options {
	return Options{Seed: 42, Trees: 100, Folds: 5, TestRatio: 0.2, TopFeatures: 5}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.Trees <= 0 {
		o.Trees = d.Trees
	}
	if o.Folds <= 0 {
		o.Folds = d.Folds
	}
	if o.TestRatio <= 0 || o.TestRatio >= 1 {
		o.TestRatio = d.TestRatio
	}
	if o.TopFeatures <= 0 {
		o.TopFeatures = d.TopFeatures
	}
	return o
}

// Recorder receives run measurements. It may be nil.
type Recorder interface {
	ObserveRun(d time.Duration)
	ObserveMetric(m Metric)
}

// Analyzer runs the full passenger analysis.
type Analyzer struct {
	opts       Options
	logger     logrus.FieldLogger
	recorder   Recorder
	candidates []Candidate
}

// NewAnalyzer builds an Analyzer. logger and rec may be nil.
func NewAnalyzer(opts Options, logger logrus.FieldLogger, rec Recorder) *Analyzer {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Analyzer{
		opts:       opts.withDefaults(),
		logger:     logger,
		recorder:   rec,
		candidates: DefaultCandidates(),
	}
}

// Prepare imputes and engineers ps in place.
func (a *Analyzer) Prepare(ps []data.Passenger) error {
	p := pipeline.NewPipeline(a.logger,
		pipeline.StepFunc{StepName: "impute", Fn: func(ps []data.Passenger) error {
			report, err := dataprep.HandleMissingValues(ps)
			if err != nil {
				return err
			}
			for _, f := range report.Fills {
				a.logger.WithFields(logrus.Fields{
					"column":   f.Column,
					"strategy": f.Strategy,
					"value":    f.Value,
					"filled":   f.Filled,
				}).Debug("imputed column")
			}
			a.logger.WithField("filled", report.Total()).Info("missing values imputed")
			return nil
		}},
		pipeline.StepFunc{StepName: "engineer", Fn: dataprep.EngineerFeatures},
	)
	return p.Run(ps)
}

// Encode turns prepared passengers into the model matrix.
func (a *Analyzer) Encode(ps []data.Passenger) (*core.Dataset, error) {
	ds, err := dataprep.Encode(ps, pipeline.DefaultSchema())
	if err != nil {
		return nil, fmt.Errorf("analysis: encoding: %w", err)
	}
	return ds, nil
}

// Run prepares ps in place, ranks features and compares the models.
func (a *Analyzer) Run(ctx context.Context, ps []data.Passenger) (*Result, error) {
	start := time.Now()
	if len(ps) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewRows, len(ps))
	}
	if err := a.Prepare(ps); err != nil {
		return nil, err
	}
	ds, err := a.Encode(ps)
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{
		"rows":     ds.Len(),
		"features": ds.NumFeatures(),
	}).Info("feature matrix ready")

	importances, err := RankFeatures(ds, a.opts.Trees, a.opts.Seed)
	if err != nil {
		return nil, err
	}

	cmp := &Comparator{
		Candidates: a.candidates,
		Folds:      a.opts.Folds,
		TestRatio:  a.opts.TestRatio,
		SplitSeed:  a.opts.Seed,
		Logger:     a.logger,
	}
	metrics, err := cmp.Compare(ctx, ds)
	if err != nil {
		return nil, err
	}

	if a.recorder != nil {
		for _, m := range metrics {
			a.recorder.ObserveMetric(m)
		}
		a.recorder.ObserveRun(time.Since(start))
	}
	a.logger.WithField("elapsed", time.Since(start)).Info("analysis complete")
	return NewResult(importances, metrics, a.opts.TopFeatures), nil
}

// RunFile loads path and runs the analysis on it.
func (a *Analyzer) RunFile(ctx context.Context, path string) (*Result, error) {
	ps, err := data.LoadPassengers(path)
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{"path": path, "rows": len(ps)}).Info("passengers loaded")
	return a.Run(ctx, ps)
}

// Explore loads path, prepares it and summarizes it.
func (a *Analyzer) Explore(path string) (*Summary, error) {
	ps, err := data.LoadPassengers(path)
	if err != nil {
		return nil, err
	}
	if err := a.Prepare(ps); err != nil {
		return nil, err
	}
	return Summarize(ps), nil
}
