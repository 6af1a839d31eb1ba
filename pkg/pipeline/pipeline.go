package pipeline

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kakaka820/Titanic/pkg/data"
)

// Step transforms the passenger list in place.
type Step interface {
	Name() string
	Apply(ps []data.Passenger) error
}

// StepFunc adapts a function to Step.
type StepFunc struct {
	StepName string
	Fn       func([]data.Passenger) error
}

func (s StepFunc) Name() string { return s.StepName }
func (s StepFunc) Apply(ps []data.Passenger) error { return s.Fn(ps) }

// Pipeline chains multiple steps.
type Pipeline struct {
	steps  []Step
	logger logrus.FieldLogger
}

func NewPipeline(logger logrus.FieldLogger, steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, logger: logger}
}

// Run applies every step in order and stops at the first failure.
func (p *Pipeline) Run(ps []data.Passenger) error {
	for _, step := range p.steps {
		start := time.Now()
		if err := step.Apply(ps); err != nil {
			return fmt.Errorf("pipeline: step %s: %w", step.Name(), err)
		}
		if p.logger != nil {
			p.logger.WithFields(logrus.Fields{
				"step":    step.Name(),
				"rows":    len(ps),
				"elapsed": time.Since(start),
			}).Debug("pipeline step done")
		}
	}
	return nil
}
