// Package sweep drives pairwise repression ablation sweeps and derives
// per-condition error matrices from their results.
package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gramsim/gram/internal/logging"
	"github.com/gramsim/gram/internal/model"
	"github.com/gramsim/gram/internal/sim"
)

// PairKey identifies one sweep run: the mechanism kept permanently
// repressed and the mechanism ablated in the paired comparison.
type PairKey struct {
	Permanent int `json:"permanent"`
	Removed   int `json:"removed"`
}

// Valid reports whether both indices are in range.
func (k PairKey) Valid() bool {
	return k.Permanent >= 0 && k.Permanent < model.NumMechanisms &&
		k.Removed >= 0 && k.Removed < model.NumMechanisms
}

// Results maps each swept pair to its per-condition comparisons.
// It is populated write-once per key by the driver and treated as
// frozen afterwards.
type Results map[PairKey]sim.ComparisonSet

// AllPairs returns every ordered pair in sweep order. Pairs with
// Permanent == Removed are meaningful configurations and are included.
func AllPairs() []PairKey {
	pairs := make([]PairKey, 0, model.NumMechanisms*model.NumMechanisms)
	for i := 0; i < model.NumMechanisms; i++ {
		for j := 0; j < model.NumMechanisms; j++ {
			pairs = append(pairs, PairKey{Permanent: i, Removed: j})
		}
	}
	return pairs
}

// MissingPairs returns the pairs absent from results, in sweep order.
func MissingPairs(results Results) []PairKey {
	var missing []PairKey
	for _, key := range AllPairs() {
		if _, ok := results[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// MissingConditions returns the requested condition labels that appear
// in no comparison set in results, preserving the requested order.
// Their matrices would render as all zeros.
func MissingConditions(results Results, conditions []string) []string {
	var missing []string
	for _, cond := range conditions {
		found := false
		for _, set := range results {
			if _, ok := set[cond]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, cond)
		}
	}
	return missing
}

// Driver runs the full pairwise ablation sweep. For each ordered pair
// (i, j) it builds a model with mechanism i permanently repressed and
// mechanism j repressed-but-ablatable, runs the simulator, and keeps
// only the comparison summaries. Any simulation failure aborts the
// sweep immediately.
type Driver struct {
	// Eta holds the repression strength for each mechanism.
	Eta model.FeedbackVector

	// G1 and G2 are the mRNA and protein decay rate constants.
	G1, G2 float64

	// Trajectories is the per-condition trajectory count.
	Trajectories int

	Simulator sim.Simulator

	// Logger and RunLog are optional.
	Logger *slog.Logger
	RunLog *logging.RunLogger
}

// Run executes the sweep and returns the collected results.
func (d *Driver) Run(ctx context.Context) (Results, error) {
	if d.Simulator == nil {
		return nil, fmt.Errorf("no simulator configured")
	}
	if d.Trajectories <= 0 {
		return nil, fmt.Errorf("trajectory count must be positive, got %d", d.Trajectories)
	}
	if err := d.Eta.Validate(); err != nil {
		return nil, fmt.Errorf("feedback strengths: %w", err)
	}

	results := make(Results, model.NumMechanisms*model.NumMechanisms)
	for _, key := range AllPairs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, err := d.buildModel(key)
		if err != nil {
			return nil, fmt.Errorf("pair (%d,%d): %w", key.Permanent, key.Removed, err)
		}

		if d.Logger != nil {
			d.Logger.Debug("running pair",
				"permanent", key.Permanent,
				"removed", key.Removed,
				"trajectories", d.Trajectories)
		}

		set, err := d.Simulator.Run(ctx, m, d.Trajectories)
		if err != nil {
			return nil, fmt.Errorf("pair (%d,%d): %w", key.Permanent, key.Removed, err)
		}
		if err := set.Validate(); err != nil {
			return nil, fmt.Errorf("pair (%d,%d): %w", key.Permanent, key.Removed, err)
		}

		// Only the comparison summaries are retained; trajectory data
		// stays inside the simulator so peak memory is one run's worth.
		results[key] = set

		d.RunLog.Log(map[string]any{
			"event":      "pair_complete",
			"permanent":  key.Permanent,
			"removed":    key.Removed,
			"conditions": len(set),
		})
	}
	return results, nil
}

// buildModel constructs the model for one pair: the permanent feedback
// is applied unconditionally, the removed feedback is flagged perturbed.
func (d *Driver) buildModel(key PairKey) (*model.LinearModel, error) {
	m, err := model.New(d.G1, d.G2)
	if err != nil {
		return nil, err
	}

	permanent, err := model.Singleton(key.Permanent, d.Eta[key.Permanent])
	if err != nil {
		return nil, err
	}
	if err := m.AddFeedback(permanent, false); err != nil {
		return nil, err
	}

	removed, err := model.Singleton(key.Removed, d.Eta[key.Removed])
	if err != nil {
		return nil, err
	}
	if err := m.AddFeedback(removed, true); err != nil {
		return nil, err
	}
	return m, nil
}
