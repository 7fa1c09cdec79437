package sim

import (
	"context"
	"runtime"
	"testing"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("exec simulator tests require a POSIX shell")
	}
}

func TestExecSimulator(t *testing.T) {
	skipWithoutShell(t)

	script := `cat >/dev/null; printf '{"comparisons":{"normal":{"threshold_error":0.25},"minute":{"threshold_error":0.75}}}'`
	sim := &ExecSimulator{Command: "sh", Args: []string{"-c", script}}

	set, err := sim.Run(context.Background(), testModel(t, 1, 2), 5000)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if set["normal"].ThresholdError != 0.25 {
		t.Errorf("normal threshold error = %g, want 0.25", set["normal"].ThresholdError)
	}
	if set["minute"].ThresholdError != 0.75 {
		t.Errorf("minute threshold error = %g, want 0.75", set["minute"].ThresholdError)
	}
}

func TestExecSimulatorEngineFailure(t *testing.T) {
	skipWithoutShell(t)

	sim := &ExecSimulator{Command: "sh", Args: []string{"-c", `cat >/dev/null; echo "engine exploded" >&2; exit 3`}}
	if _, err := sim.Run(context.Background(), testModel(t, 0, 1), 100); err == nil {
		t.Error("Run() expected error for failing engine")
	}
}

func TestExecSimulatorBadResponse(t *testing.T) {
	skipWithoutShell(t)

	tests := []struct {
		name   string
		script string
	}{
		{"not json", `cat >/dev/null; echo garbage`},
		{"empty comparisons", `cat >/dev/null; printf '{"comparisons":{}}'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := &ExecSimulator{Command: "sh", Args: []string{"-c", tt.script}}
			if _, err := sim.Run(context.Background(), testModel(t, 0, 1), 100); err == nil {
				t.Error("Run() expected error")
			}
		})
	}
}

func TestExecSimulatorUnconfigured(t *testing.T) {
	sim := &ExecSimulator{}
	if _, err := sim.Run(context.Background(), testModel(t, 0, 0), 100); err == nil {
		t.Error("Run() expected error when command is empty")
	}
}
