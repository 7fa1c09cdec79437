package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gramsim/gram/internal/config"
	"github.com/gramsim/gram/internal/sim"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "gram",
		Short: "Gram - pairwise repressor ablation sweeps for gene expression models",
		Long: `gram sweeps a stochastic gene expression model over ordered pairs of
repression mechanisms, keeping one permanently active and removing the
other, and summarizes how well each ablated model tracks expression
thresholds across growth conditions.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ~/.gram/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newSweepCmd(),
		newRenderCmd(),
		newExportCmd(),
		newBuildCmd(),
		newSimulateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "gram version %s\n", version)
			}
		},
	}
}

// loadConfig loads the effective configuration for a command, honoring
// the --config flag when set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newSimulator builds the simulation engine selected by the config.
func newSimulator(cfg *config.Config) (sim.Simulator, error) {
	switch cfg.Simulation.Engine {
	case "", "stub":
		return &sim.StubSimulator{Conditions: cfg.Simulation.Conditions}, nil
	case "exec":
		return &sim.ExecSimulator{
			Command:    cfg.Simulation.Command,
			Args:       cfg.Simulation.Args,
			Conditions: cfg.Simulation.Conditions,
		}, nil
	default:
		return nil, fmt.Errorf("unknown simulation engine: %s", cfg.Simulation.Engine)
	}
}
