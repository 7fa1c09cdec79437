package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/gramsim/gram/internal/model"
)

// ExecSimulator adapts an external engine binary. One run is one process
// invocation: the model and trajectory count go to the engine's stdin as
// JSON, and the engine answers with a JSON comparison document on stdout.
type ExecSimulator struct {
	Command string
	Args    []string

	// Conditions requested from the engine. Defaults to model.Conditions.
	Conditions []string

	// Logger is optional; engine stderr is logged at debug level.
	Logger *slog.Logger
}

type execRequest struct {
	Model        *model.LinearModel `json:"model"`
	Trajectories int                `json:"trajectories"`
	Conditions   []string           `json:"conditions"`
}

type execResponse struct {
	Comparisons map[string]Comparison `json:"comparisons"`
}

// Run implements Simulator.
func (e *ExecSimulator) Run(ctx context.Context, m *model.LinearModel, trajectories int) (ComparisonSet, error) {
	if e.Command == "" {
		return nil, fmt.Errorf("engine command not configured")
	}
	if m == nil {
		return nil, fmt.Errorf("nil model")
	}
	if trajectories <= 0 {
		return nil, fmt.Errorf("trajectory count must be positive, got %d", trajectories)
	}

	conditions := e.Conditions
	if len(conditions) == 0 {
		conditions = model.Conditions
	}

	payload, err := json.Marshal(execRequest{
		Model:        m,
		Trajectories: trajectories,
		Conditions:   conditions,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding engine request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("engine %s: %w: %s", e.Command, err, msg)
		}
		return nil, fmt.Errorf("engine %s: %w", e.Command, err)
	}
	if e.Logger != nil && stderr.Len() > 0 {
		e.Logger.Debug("engine stderr", "command", e.Command, "output", strings.TrimSpace(stderr.String()))
	}

	var resp execResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decoding engine response: %w", err)
	}
	set := ComparisonSet(resp.Comparisons)
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("engine %s: %w", e.Command, err)
	}
	return set, nil
}
