package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gramsim/gram/internal/plot"
	"github.com/gramsim/gram/internal/store"
	"github.com/gramsim/gram/internal/sweep"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render sweep results as a heatmap row",
		Long: `Render saved sweep results as a horizontal row of per-condition
heatmaps, one 3x3 panel per growth condition. Pairs missing from the
results render as zero cells and produce a warning.

With --profile-dir, one line chart per condition is written alongside
the heatmap.

Example:
  gram render --input results/sweep.json --output results/heatmaps.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			input, _ := cmd.Flags().GetString("input")
			if input == "" {
				input = cfg.Results.Path
			}
			output, _ := cmd.Flags().GetString("output")
			profileDir, _ := cmd.Flags().GetString("profile-dir")

			results, err := store.Load(input)
			if err != nil {
				return fmt.Errorf("loading results: %w", err)
			}

			missing := sweep.MissingPairs(results)
			for _, key := range missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: pair (%d,%d) missing from results, rendering as zero\n",
					key.Permanent, key.Removed)
			}
			for _, cond := range sweep.MissingConditions(results, cfg.Simulation.Conditions) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: condition %q missing from results, rendering as zero\n", cond)
			}

			matrices := sweep.BuildMatrices(results, cfg.Simulation.Conditions)
			panels := plot.PanelsFor(matrices, cfg.Simulation.Conditions)

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating heatmap file: %w", err)
			}
			defer f.Close()

			if err := plot.RenderHeatmapRow(f, panels); err != nil {
				return fmt.Errorf("rendering heatmaps: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing heatmap file: %w", err)
			}

			var profiles []string
			if profileDir != "" {
				if err := os.MkdirAll(profileDir, 0755); err != nil {
					return fmt.Errorf("creating profile directory: %w", err)
				}
				for _, cond := range cfg.Simulation.Conditions {
					path := filepath.Join(profileDir, cond+".png")
					if err := renderProfileFile(path, cond, matrices[cond]); err != nil {
						return err
					}
					profiles = append(profiles, path)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				result := map[string]interface{}{
					"status":     "rendered",
					"heatmap":    output,
					"conditions": cfg.Simulation.Conditions,
					"missing":    len(missing),
				}
				if len(profiles) > 0 {
					result["profiles"] = profiles
				}
				json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Heatmap row written to %s\n", output)
				for _, p := range profiles {
					fmt.Fprintf(cmd.OutOrStdout(), "Profile written to %s\n", p)
				}
			}

			return nil
		},
	}

	cmd.Flags().String("input", "", "Results file path (default: from config)")
	cmd.Flags().String("output", "heatmaps.png", "Heatmap PNG path")
	cmd.Flags().String("profile-dir", "", "Directory for per-condition profile charts")

	return cmd
}

func renderProfileFile(path, condition string, m sweep.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating profile file: %w", err)
	}
	defer f.Close()

	if err := plot.RenderProfile(f, condition, m); err != nil {
		return fmt.Errorf("rendering profile for %s: %w", condition, err)
	}
	return f.Close()
}
