package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gramsim/gram/internal/store"
)

func buildWorkspace(t *testing.T, dir string) string {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newBuildCmd())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"build", "--dir", dir, "--samples", "3", "--seed", "7", "--json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	root, _ := result["root"].(string)
	if root == "" {
		t.Fatal("build output has no workspace root")
	}
	return root
}

func TestBuildCmdLaysOutWorkspace(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	root := buildWorkspace(t, tmpDir)

	for i := 0; i < 3; i++ {
		path := filepath.Join(root, "simulations", strconv.Itoa(i), "parameters.json")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing parameters file for sample %d: %v", i, err)
		}
	}

	script := filepath.Join(root, "scripts", "job_submission.sh")
	info, err := os.Stat(script)
	if err != nil {
		t.Fatalf("missing submission script: %v", err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("submission script is not executable: %v", info.Mode())
	}

	if _, err := os.Stat(filepath.Join(root, "scripts", "paths.txt")); err != nil {
		t.Errorf("missing paths listing: %v", err)
	}
}

func TestBuildCmdRejectsBadInputs(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	tests := []struct {
		name string
		args []string
	}{
		{"zero samples", []string{"build", "--dir", tmpDir, "--samples", "0"}},
		{"negative delta", []string{"build", "--dir", tmpDir, "--delta", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd := newTestRootCmd()
			rootCmd.AddCommand(newBuildCmd())
			rootCmd.SetOut(&bytes.Buffer{})
			rootCmd.SetErr(&bytes.Buffer{})
			rootCmd.SetArgs(tt.args)
			if err := rootCmd.Execute(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSimulateCmdWritesComparisons(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	root := buildWorkspace(t, tmpDir)
	simDir := filepath.Join(root, "simulations", "0")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"simulate", simDir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	set, err := store.LoadComparisons(filepath.Join(simDir, "comparisons.json"))
	if err != nil {
		t.Fatalf("LoadComparisons() error = %v", err)
	}
	if len(set) != 4 {
		t.Errorf("expected 4 conditions, got %d", len(set))
	}
	for cond, c := range set {
		if c.ThresholdError < 0 {
			t.Errorf("condition %s: negative threshold error %g", cond, c.ThresholdError)
		}
	}
}

func TestSimulateCmdMissingDir(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"simulate", filepath.Join(tmpDir, "nope")})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for missing simulation directory")
	}
}
