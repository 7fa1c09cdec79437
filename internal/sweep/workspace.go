package sweep

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gramsim/gram/internal/model"
)

// NumLinearParameters is the sampled parameter count of the linear
// model: three rate constants, three decay rates, three feedback
// strengths.
const NumLinearParameters = 9

// LinearBase returns the base-10 exponents of the linear model
// parameters (k0, k1, k2, g0, g1, g2, eta0, eta1, eta2).
func LinearBase() []float64 {
	return []float64{0, 0, 0, 0, -2, -3, -4.5, -4.5, -4.5}
}

// LinearBounds returns sampling bounds of base +/- delta exponents.
func LinearBounds(delta float64) (low, high []float64) {
	base := LinearBase()
	low = make([]float64, len(base))
	high = make([]float64, len(base))
	for i, b := range base {
		low[i] = b - delta
		high[i] = b + delta
	}
	return low, high
}

// BuildLinearModel constructs a model from a sampled 9-vector. The
// repression strengths are applied twice, once permanent and once
// perturbed, so the engine's paired comparison ablates one of two
// equivalent feedback sets.
func BuildLinearModel(params []float64) (*model.LinearModel, error) {
	if len(params) != NumLinearParameters {
		return nil, fmt.Errorf("linear model needs %d parameters, got %d", NumLinearParameters, len(params))
	}

	g1, g2 := params[4], params[5]
	m, err := model.New(g1, g2)
	if err != nil {
		return nil, err
	}

	eta, err := model.NewFeedbackVector(params[6:9])
	if err != nil {
		return nil, err
	}
	if err := m.AddFeedback(eta, false); err != nil {
		return nil, err
	}
	if err := m.AddFeedback(eta, true); err != nil {
		return nil, err
	}
	return m, nil
}

// Workspace is an on-disk layout for a sampled parameter sweep: one
// directory per sample plus the scripts that submit them.
type Workspace struct {
	Root            string
	ScriptsDir      string
	SimulationsDir  string
	SimulationPaths map[int]string
}

const (
	parametersFile = "parameters.json"
	pathsFile      = "paths.txt"
	submitScript   = "job_submission.sh"
)

type parametersDoc struct {
	Parameters []float64 `json:"parameters"`
}

// BuildWorkspace creates a timestamped sweep directory under dir and
// writes one parameter file per sample, a paths listing, and an
// executable batch-submission script.
func BuildWorkspace(dir, name string, samples [][]float64, now time.Time) (*Workspace, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples given")
	}

	root := filepath.Join(dir, fmt.Sprintf("%s_%s", name, now.Format("060102_150405")))
	scriptsDir := filepath.Join(root, "scripts")
	simulationsDir := filepath.Join(root, "simulations")
	for _, d := range []string{root, scriptsDir, simulationsDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("creating sweep directory: %w", err)
		}
	}

	ws := &Workspace{
		Root:            root,
		ScriptsDir:      scriptsDir,
		SimulationsDir:  simulationsDir,
		SimulationPaths: make(map[int]string, len(samples)),
	}

	for i, params := range samples {
		simDir := filepath.Join(simulationsDir, fmt.Sprintf("%d", i))
		if err := os.MkdirAll(simDir, 0755); err != nil {
			return nil, fmt.Errorf("creating simulation directory %d: %w", i, err)
		}
		if err := writeParameters(filepath.Join(simDir, parametersFile), params); err != nil {
			return nil, fmt.Errorf("simulation %d: %w", i, err)
		}
		ws.SimulationPaths[i] = simDir
	}

	if err := ws.writePathsFile(len(samples)); err != nil {
		return nil, err
	}
	if err := ws.writeSubmissionScript(); err != nil {
		return nil, err
	}
	return ws, nil
}

func writeParameters(path string, params []float64) error {
	data, err := json.MarshalIndent(parametersDoc{Parameters: params}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding parameters: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing parameters: %w", err)
	}
	return nil
}

// LoadParameters reads a simulation directory's sampled parameters.
func LoadParameters(simDir string) ([]float64, error) {
	data, err := os.ReadFile(filepath.Join(simDir, parametersFile))
	if err != nil {
		return nil, fmt.Errorf("reading parameters: %w", err)
	}
	var doc parametersDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing parameters: %w", err)
	}
	if len(doc.Parameters) == 0 {
		return nil, fmt.Errorf("no parameters in %s", simDir)
	}
	return doc.Parameters, nil
}

// writePathsFile lists every simulation directory, one per line, in
// sample order.
func (w *Workspace) writePathsFile(n int) error {
	f, err := os.Create(filepath.Join(w.ScriptsDir, pathsFile))
	if err != nil {
		return fmt.Errorf("creating paths file: %w", err)
	}
	defer f.Close()

	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintln(f, w.SimulationPaths[i]); err != nil {
			return fmt.Errorf("writing paths file: %w", err)
		}
	}
	return nil
}

// writeSubmissionScript writes an executable script that runs the
// engine once per simulation directory listed in paths.txt.
func (w *Workspace) writeSubmissionScript() error {
	path := filepath.Join(w.ScriptsDir, submitScript)

	script := `#!/bin/bash
# Run one engine invocation per sampled simulation directory.
SCRIPT_DIR="$(cd "$(dirname "$0")" && pwd)"
while IFS= read -r SIM
do
    gram simulate "$SIM"
done < "$SCRIPT_DIR/paths.txt"
`
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		return fmt.Errorf("writing submission script: %w", err)
	}
	return nil
}
