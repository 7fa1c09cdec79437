package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gramsim/gram/internal/store"
	"github.com/gramsim/gram/internal/sweep"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <simulation-dir>",
		Short: "Run one sampled simulation directory",
		Long: `Run the simulation engine on one directory produced by 'gram build'.
The directory's parameters.json is loaded, a model is built from it,
and the per-condition comparisons are written to comparisons.json in
the same directory.

This command is what the workspace submission script invokes per sample.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			simDir := args[0]

			params, err := sweep.LoadParameters(simDir)
			if err != nil {
				return fmt.Errorf("loading parameters: %w", err)
			}

			m, err := sweep.BuildLinearModel(params)
			if err != nil {
				return fmt.Errorf("building model: %w", err)
			}

			simulator, err := newSimulator(cfg)
			if err != nil {
				return err
			}

			comparisons, err := simulator.Run(cmd.Context(), m, cfg.Simulation.Trajectories)
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}
			if err := comparisons.Validate(); err != nil {
				return fmt.Errorf("invalid simulation output: %w", err)
			}

			outPath := filepath.Join(simDir, "comparisons.json")
			if err := store.SaveComparisons(comparisons, outPath); err != nil {
				return fmt.Errorf("saving comparisons: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status":     "simulated",
					"dir":        simDir,
					"conditions": len(comparisons),
					"path":       outPath,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Simulated %s (%d conditions)\n", simDir, len(comparisons))
			}

			return nil
		},
	}

	return cmd
}
