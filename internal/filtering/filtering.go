// Package filtering narrows a job pool before it reaches the match engine.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/domain"
)

// Filter represents a single filtering step applied to the pool.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, jobs []domain.Job) ([]domain.Job, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the standard pipeline in execution order.
func Default() []Filter {
	return []Filter{NewMissingHash(), NewExcludedCompanies(), NewExcludeFile()}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially. Pool order is preserved.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, jobs []domain.Job) ([]domain.Job, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		jobs = next
	}

	return jobs, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the jobs for which pred is true and the hashes of the rest.
func keep(jobs []domain.Job, pred func(*domain.Job) bool) ([]domain.Job, []string) {
	out := make([]domain.Job, 0, len(jobs))
	var dropped []string
	for i := range jobs {
		if pred(&jobs[i]) {
			out = append(out, jobs[i])
			continue
		}
		dropped = append(dropped, jobs[i].JobHash)
	}
	return out, dropped
}
