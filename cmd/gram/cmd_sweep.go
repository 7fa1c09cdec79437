package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gramsim/gram/internal/logging"
	"github.com/gramsim/gram/internal/model"
	"github.com/gramsim/gram/internal/store"
	"github.com/gramsim/gram/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the pairwise repressor ablation sweep",
		Long: `Run the full 3x3 ablation sweep: for every ordered pair of repression
mechanisms (i, j), build a model where mechanism i is permanently
repressed and mechanism j is repressed but removed before simulation,
run the stochastic engine, and record per-condition threshold errors.

Results are written atomically to the results file.

Example:
  gram sweep --output results/sweep.json --trajectories 5000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = cfg.Results.Path
			}
			if trajectories, _ := cmd.Flags().GetInt("trajectories"); trajectories > 0 {
				cfg.Simulation.Trajectories = trajectories
			}
			if engine, _ := cmd.Flags().GetString("engine"); engine != "" {
				cfg.Simulation.Engine = engine
			}
			if engineCmd, _ := cmd.Flags().GetString("engine-cmd"); engineCmd != "" {
				cfg.Simulation.Command = engineCmd
			}
			if cfg.Simulation.Engine == "exec" && cfg.Simulation.Command == "" {
				return fmt.Errorf("exec engine requires --engine-cmd or a configured command")
			}

			eta, err := model.NewFeedbackVector(cfg.Feedback.Eta[:])
			if err != nil {
				return fmt.Errorf("invalid feedback strengths: %w", err)
			}

			simulator, err := newSimulator(cfg)
			if err != nil {
				return err
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			runLog := logging.NewRunLogger(filepath.Dir(output), cfg.Logging.Level)
			defer runLog.Close()

			driver := &sweep.Driver{
				Eta:          eta,
				G1:           cfg.Decay.MRNA,
				G2:           cfg.Decay.Protein,
				Trajectories: cfg.Simulation.Trajectories,
				Simulator:    simulator,
				Logger:       logger,
				RunLog:       runLog,
			}

			results, err := driver.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating results directory: %w", err)
				}
			}
			if err := store.Save(results, output); err != nil {
				return fmt.Errorf("saving results: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status":       "complete",
					"pairs":        len(results),
					"trajectories": cfg.Simulation.Trajectories,
					"conditions":   cfg.Simulation.Conditions,
					"path":         output,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Sweep complete: %d pairs, %d trajectories each.\n",
					len(results), cfg.Simulation.Trajectories)
				fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", output)
			}

			return nil
		},
	}

	cmd.Flags().String("output", "", "Results file path (default: from config)")
	cmd.Flags().Int("trajectories", 0, "Trajectories per condition (default: from config)")
	cmd.Flags().String("engine", "", "Simulation engine: stub or exec (default: from config)")
	cmd.Flags().String("engine-cmd", "", "External simulator command for the exec engine")

	return cmd
}
