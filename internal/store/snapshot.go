// Package store persists sweep results. The primary format is a
// versioned JSON snapshot of (permanent, removed, condition,
// threshold_error) triples, deliberately decoupled from engine-internal
// object shapes. A SQLite store and columnar exports cover downstream
// analysis workflows.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gramsim/gram/internal/sim"
	"github.com/gramsim/gram/internal/sweep"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

type snapshot struct {
	Version int           `json:"version"`
	Runs    []snapshotRun `json:"runs"`
}

type snapshotRun struct {
	Permanent  int                       `json:"permanent"`
	Removed    int                       `json:"removed"`
	Conditions map[string]sim.Comparison `json:"conditions"`
}

// Save serializes results to path. The snapshot is written to a
// temporary file in the destination directory and renamed into place,
// so a partially written file is never treated as valid on load.
func Save(results sweep.Results, path string) error {
	runs := make([]snapshotRun, 0, len(results))
	for key, set := range results {
		conditions := make(map[string]sim.Comparison, len(set))
		for cond, c := range set {
			conditions[cond] = c
		}
		runs = append(runs, snapshotRun{
			Permanent:  key.Permanent,
			Removed:    key.Removed,
			Conditions: conditions,
		})
	}
	// Stable file content for identical results
	sort.Slice(runs, func(a, b int) bool {
		if runs[a].Permanent != runs[b].Permanent {
			return runs[a].Permanent < runs[b].Permanent
		}
		return runs[a].Removed < runs[b].Removed
	})

	data, err := json.MarshalIndent(snapshot{Version: SnapshotVersion, Runs: runs}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// writeAtomic writes data to a temporary file next to path and renames
// it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating temporary snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving snapshot into place: %w", err)
	}
	return nil
}

// SaveComparisons writes a single run's per-condition comparisons to
// path with the same atomic write discipline as Save.
func SaveComparisons(set sim.ComparisonSet, path string) error {
	if err := set.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(map[string]sim.ComparisonSet{"comparisons": set}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding comparisons: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// LoadComparisons reads a comparisons file written by SaveComparisons.
func LoadComparisons(path string) (sim.ComparisonSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading comparisons: %w", err)
	}
	var doc struct {
		Comparisons sim.ComparisonSet `json:"comparisons"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing comparisons: %w", err)
	}
	if err := doc.Comparisons.Validate(); err != nil {
		return nil, err
	}
	return doc.Comparisons, nil
}

// Load reads a snapshot back into sweep results. Missing or corrupt
// files surface as errors; no partial recovery is attempted.
func Load(path string) (sweep.Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d (want %d)", snap.Version, SnapshotVersion)
	}

	results := make(sweep.Results, len(snap.Runs))
	for _, run := range snap.Runs {
		key := sweep.PairKey{Permanent: run.Permanent, Removed: run.Removed}
		if !key.Valid() {
			return nil, fmt.Errorf("snapshot pair (%d,%d) out of range", run.Permanent, run.Removed)
		}
		if _, dup := results[key]; dup {
			return nil, fmt.Errorf("duplicate snapshot pair (%d,%d)", run.Permanent, run.Removed)
		}
		if len(run.Conditions) == 0 {
			return nil, fmt.Errorf("snapshot pair (%d,%d) has no conditions", run.Permanent, run.Removed)
		}
		results[key] = sim.ComparisonSet(run.Conditions)
	}
	return results, nil
}
