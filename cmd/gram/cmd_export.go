package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gramsim/gram/internal/store"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sweep results to CSV, Arrow, or SQLite",
		Long: `Export saved sweep results to an analysis-friendly format.

Formats:
  csv     one row per (pair, condition), exact float round-trip
  arrow   Arrow IPC stream with the same columns
  sqlite  SQLite database, replacing any previous export

Example:
  gram export --input results/sweep.json --format csv --output sweep.csv`,
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
			format, _ := cmd.Flags().GetString("format")

			results, err := store.Load(input)
			if err != nil {
				return fmt.Errorf("loading results: %w", err)
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}

			switch format {
			case "csv":
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer f.Close()
				if err := store.WriteCSV(f, results); err != nil {
					return fmt.Errorf("writing CSV: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("writing export file: %w", err)
				}

			case "arrow":
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer f.Close()
				if err := store.WriteArrow(f, results); err != nil {
					return fmt.Errorf("writing Arrow stream: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("writing export file: %w", err)
				}

			case "sqlite":
				db, err := store.OpenSQLite(output)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()
				if err := db.Save(cmd.Context(), results); err != nil {
					return fmt.Errorf("writing database: %w", err)
				}
				if err := db.Close(); err != nil {
					return fmt.Errorf("closing database: %w", err)
				}

			default:
				return fmt.Errorf("unknown format: %s (valid: csv, arrow, sqlite)", format)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status": "exported",
					"format": format,
					"pairs":  len(results),
					"path":   output,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d pairs to %s (%s)\n", len(results), output, format)
			}

			return nil
		},
	}

	cmd.Flags().String("input", "", "Results file path (default: from config)")
	cmd.Flags().String("output", "sweep.csv", "Export file path")
	cmd.Flags().String("format", "csv", "Export format (csv, arrow, sqlite)")

	return cmd
}
