// Package sim defines the simulation engine capability consumed by the
// sweep driver. The stochastic engine itself lives outside this module;
// implementations adapt it behind the Simulator interface so the driver
// and its tests never depend on engine internals.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/gramsim/gram/internal/model"
)

// Comparison summarizes a paired baseline-vs-ablated comparison for one
// biosynthesis condition.
type Comparison struct {
	// ThresholdError is the developmental error frequency in [0, 1].
	ThresholdError float64 `json:"threshold_error"`
}

// ComparisonSet maps condition labels to their comparison summary.
type ComparisonSet map[string]Comparison

// Simulator runs trajectories for every biosynthesis condition and
// returns the per-condition comparison summaries. Raw trajectory data
// never crosses this boundary.
type Simulator interface {
	Run(ctx context.Context, m *model.LinearModel, trajectories int) (ComparisonSet, error)
}

// StubSimulator is a deterministic Simulator for tests and dry runs.
type StubSimulator struct {
	// Conditions defaults to model.Conditions when empty.
	Conditions []string

	// Error computes the threshold error for a model under a condition.
	// When nil, DefaultError is used.
	Error func(m *model.LinearModel, condition string) float64
}

// DefaultError derives a synthetic threshold error from the active
// permanent and perturbed mechanisms: 0.1*permanent + 0.01*removed.
func DefaultError(m *model.LinearModel, _ string) float64 {
	perm, removed := 0, 0
	if v, ok := m.Permanent(); ok {
		if i, ok := v.ActiveMechanism(); ok {
			perm = i
		}
	}
	if v, ok := m.Perturbed(); ok {
		if i, ok := v.ActiveMechanism(); ok {
			removed = i
		}
	}
	return 0.1*float64(perm) + 0.01*float64(removed)
}

// Run implements Simulator.
func (s *StubSimulator) Run(ctx context.Context, m *model.LinearModel, trajectories int) (ComparisonSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("nil model")
	}
	if trajectories <= 0 {
		return nil, fmt.Errorf("trajectory count must be positive, got %d", trajectories)
	}

	conditions := s.Conditions
	if len(conditions) == 0 {
		conditions = model.Conditions
	}
	errFn := s.Error
	if errFn == nil {
		errFn = DefaultError
	}

	set := make(ComparisonSet, len(conditions))
	for _, cond := range conditions {
		set[cond] = Comparison{ThresholdError: errFn(m, cond)}
	}
	return set, nil
}

// Validate checks that every comparison carries a finite error frequency.
func (cs ComparisonSet) Validate() error {
	if len(cs) == 0 {
		return fmt.Errorf("empty comparison set")
	}
	for cond, c := range cs {
		if math.IsNaN(c.ThresholdError) || math.IsInf(c.ThresholdError, 0) {
			return fmt.Errorf("condition %q: threshold error is not finite", cond)
		}
	}
	return nil
}
