package sweep

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gramsim/gram/internal/model"
	"github.com/gramsim/gram/internal/sim"
)

var testEta = model.FeedbackVector{5e-4, 1e-4, 5e-4}

func testDriver(s sim.Simulator) *Driver {
	return &Driver{
		Eta:          testEta,
		G1:           0.01,
		G2:           0.001,
		Trajectories: 5000,
		Simulator:    s,
	}
}

// recordingSimulator captures every model passed to Run.
type recordingSimulator struct {
	stub   sim.StubSimulator
	models []*model.LinearModel
}

func (r *recordingSimulator) Run(ctx context.Context, m *model.LinearModel, trajectories int) (sim.ComparisonSet, error) {
	r.models = append(r.models, m)
	return r.stub.Run(ctx, m, trajectories)
}

func TestDriverProducesAllPairs(t *testing.T) {
	rec := &recordingSimulator{}
	results, err := testDriver(rec).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(results) != 9 {
		t.Fatalf("Run() produced %d results, want 9", len(results))
	}
	for i := 0; i < model.NumMechanisms; i++ {
		for j := 0; j < model.NumMechanisms; j++ {
			if _, ok := results[PairKey{Permanent: i, Removed: j}]; !ok {
				t.Errorf("Run() missing pair (%d,%d)", i, j)
			}
		}
	}
	if len(rec.models) != 9 {
		t.Errorf("simulator invoked %d times, want 9", len(rec.models))
	}
}

func TestDriverFeedbackVectors(t *testing.T) {
	rec := &recordingSimulator{}
	if _, err := testDriver(rec).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	pairs := AllPairs()
	for n, m := range rec.models {
		key := pairs[n]

		perm, ok := m.Permanent()
		if !ok {
			t.Fatalf("pair %v: model has no permanent feedback", key)
		}
		i, single := perm.ActiveMechanism()
		if !single || i != key.Permanent {
			t.Errorf("pair %v: permanent vector %v, want single entry at %d", key, perm, key.Permanent)
		}
		if perm[key.Permanent] != testEta[key.Permanent] {
			t.Errorf("pair %v: permanent strength = %g, want %g", key, perm[key.Permanent], testEta[key.Permanent])
		}

		rem, ok := m.Perturbed()
		if !ok {
			t.Fatalf("pair %v: model has no perturbed feedback", key)
		}
		j, single := rem.ActiveMechanism()
		if !single || j != key.Removed {
			t.Errorf("pair %v: removed vector %v, want single entry at %d", key, rem, key.Removed)
		}
		if rem[key.Removed] != testEta[key.Removed] {
			t.Errorf("pair %v: removed strength = %g, want %g", key, rem[key.Removed], testEta[key.Removed])
		}

		if m.G1 != 0.01 || m.G2 != 0.001 {
			t.Errorf("pair %v: decay rates = (%g, %g), want (0.01, 0.001)", key, m.G1, m.G2)
		}
	}
}

func TestDriverIncludesDiagonal(t *testing.T) {
	rec := &recordingSimulator{}
	results, err := testDriver(rec).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i := 0; i < model.NumMechanisms; i++ {
		set, ok := results[PairKey{Permanent: i, Removed: i}]
		if !ok {
			t.Errorf("diagonal pair (%d,%d) missing", i, i)
			continue
		}
		if err := set.Validate(); err != nil {
			t.Errorf("diagonal pair (%d,%d): %v", i, i, err)
		}
	}
}

// failingSimulator fails on the nth invocation.
type failingSimulator struct {
	stub   sim.StubSimulator
	calls  int
	failOn int
}

func (f *failingSimulator) Run(ctx context.Context, m *model.LinearModel, trajectories int) (sim.ComparisonSet, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, errors.New("engine crashed")
	}
	return f.stub.Run(ctx, m, trajectories)
}

func TestDriverAbortsOnSimulationFailure(t *testing.T) {
	f := &failingSimulator{failOn: 5}
	results, err := testDriver(f).Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected error from failing simulator")
	}
	if results != nil {
		t.Errorf("Run() returned partial results on failure: %v", results)
	}
	if f.calls != 5 {
		t.Errorf("simulator called %d times after failure, want 5 (abort immediately)", f.calls)
	}
}

func TestDriverValidation(t *testing.T) {
	d := testDriver(&sim.StubSimulator{})

	d.Trajectories = 0
	if _, err := d.Run(context.Background()); err == nil {
		t.Error("Run() expected error for zero trajectories")
	}

	d = testDriver(nil)
	if _, err := d.Run(context.Background()); err == nil {
		t.Error("Run() expected error for nil simulator")
	}

	d = testDriver(&sim.StubSimulator{})
	d.Eta = model.FeedbackVector{-1, 0, 0}
	if _, err := d.Run(context.Background()); err == nil {
		t.Error("Run() expected error for negative feedback strength")
	}
}

func TestDriverContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testDriver(&sim.StubSimulator{}).Run(ctx); err == nil {
		t.Error("Run() expected error with cancelled context")
	}
}

func TestSweepEndToEnd(t *testing.T) {
	// Stub engine: threshold error = 0.1*permanent + 0.01*removed under
	// every condition.
	stub := &sim.StubSimulator{Error: func(m *model.LinearModel, _ string) float64 {
		perm, _ := m.Permanent()
		i, _ := perm.ActiveMechanism()
		rem, _ := m.Perturbed()
		j, _ := rem.ActiveMechanism()
		return 0.1*float64(i) + 0.01*float64(j)
	}}

	results, err := testDriver(stub).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	matrices := BuildMatrices(results, nil)
	normal, ok := matrices["normal"]
	if !ok {
		t.Fatal("BuildMatrices() missing 'normal' matrix")
	}

	checks := []struct {
		i, j int
		want float64
	}{
		{0, 0, 0.00},
		{0, 1, 0.01},
		{2, 2, 0.22},
		{1, 0, 0.10},
	}
	for _, c := range checks {
		if got := normal[c.i][c.j]; got != c.want {
			t.Errorf("normal[%d][%d] = %g, want %g", c.i, c.j, got, c.want)
		}
	}
}

func TestMissingPairs(t *testing.T) {
	results := make(Results)
	for _, key := range AllPairs() {
		results[key] = sim.ComparisonSet{"normal": {ThresholdError: 0.1}}
	}
	if missing := MissingPairs(results); len(missing) != 0 {
		t.Errorf("MissingPairs() = %v, want none", missing)
	}

	delete(results, PairKey{Permanent: 1, Removed: 2})
	missing := MissingPairs(results)
	if len(missing) != 1 || missing[0] != (PairKey{Permanent: 1, Removed: 2}) {
		t.Errorf("MissingPairs() = %v, want [(1,2)]", missing)
	}
}

func TestMissingConditions(t *testing.T) {
	results := make(Results)
	for _, key := range AllPairs() {
		results[key] = sim.ComparisonSet{"normal": {ThresholdError: 0.1}}
	}
	results[PairKey{Permanent: 0, Removed: 1}]["minute"] = sim.Comparison{ThresholdError: 0.2}

	conditions := []string{"normal", "diabetic", "minute", "carbon_limited"}
	got := MissingConditions(results, conditions)
	want := []string{"diabetic", "carbon_limited"}
	if len(got) != len(want) {
		t.Fatalf("MissingConditions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MissingConditions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if missing := MissingConditions(results, []string{"normal"}); len(missing) != 0 {
		t.Errorf("MissingConditions() = %v, want none", missing)
	}
}

func ExampleAllPairs() {
	fmt.Println(len(AllPairs()))
	// Output: 9
}
