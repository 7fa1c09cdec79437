package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gramsim/gram/internal/sweep"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a sampled parameter sweep workspace",
		Long: `Sample model parameter sets log-uniformly around the base parameters
and lay out a timestamped sweep directory: one simulation directory per
sample, a paths listing, and a batch-submission script that runs
'gram simulate' on each sample.

Example:
  gram build --dir sweeps --samples 100 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			name, _ := cmd.Flags().GetString("name")
			n, _ := cmd.Flags().GetInt("samples")
			seed, _ := cmd.Flags().GetInt64("seed")
			delta, _ := cmd.Flags().GetFloat64("delta")

			if n <= 0 {
				return fmt.Errorf("sample count must be positive, got %d", n)
			}
			if delta <= 0 {
				return fmt.Errorf("delta must be positive, got %g", delta)
			}

			low, high := sweep.LinearBounds(delta)
			sampler, err := sweep.NewLogSampler(low, high, seed)
			if err != nil {
				return fmt.Errorf("building sampler: %w", err)
			}

			ws, err := sweep.BuildWorkspace(dir, name, sampler.Sample(n), time.Now())
			if err != nil {
				return fmt.Errorf("building workspace: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status":  "built",
					"root":    ws.Root,
					"samples": len(ws.SimulationPaths),
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Workspace built at %s (%d samples)\n", ws.Root, len(ws.SimulationPaths))
				fmt.Fprintf(cmd.OutOrStdout(), "Submit with: bash %s/scripts/job_submission.sh\n", ws.Root)
			}

			return nil
		},
	}

	cmd.Flags().String("dir", ".", "Parent directory for the workspace")
	cmd.Flags().String("name", "linear", "Workspace name prefix")
	cmd.Flags().Int("samples", 10, "Number of parameter samples")
	cmd.Flags().Int64("seed", 0, "Random seed for sampling")
	cmd.Flags().Float64("delta", 0.5, "Log10 half-width around the base parameters")

	return cmd
}
