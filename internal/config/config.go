// Package config provides unified configuration loading for gram.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gramsim/gram/internal/model"
)

// Config contains all gram configuration settings.
type Config struct {
	// Feedback contains the repressor strengths applied during sweeps.
	Feedback FeedbackConfig `json:"feedback" yaml:"feedback"`

	// Decay contains the first-order decay rates of the expression model.
	Decay DecayConfig `json:"decay" yaml:"decay"`

	// Simulation contains settings for the stochastic simulation engine.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Results contains settings for result persistence.
	Results ResultsConfig `json:"results" yaml:"results"`

	// Logging contains settings for operational and run logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// FeedbackConfig configures the repressor strengths used by the sweep.
type FeedbackConfig struct {
	// Eta holds one repressor strength per mechanism, indexed by
	// mechanism position.
	Eta [model.NumMechanisms]float64 `json:"eta" yaml:"eta"`
}

// DecayConfig configures the first-order decay rates of the model.
type DecayConfig struct {
	// MRNA is the mRNA decay rate g1.
	MRNA float64 `json:"mrna" yaml:"mrna"`

	// Protein is the protein decay rate g2.
	Protein float64 `json:"protein" yaml:"protein"`
}

// SimulationConfig configures the stochastic simulation engine.
type SimulationConfig struct {
	// Trajectories is the number of stochastic trajectories per run.
	Trajectories int `json:"trajectories" yaml:"trajectories"`

	// Conditions lists the growth conditions each run is evaluated
	// against.
	Conditions []string `json:"conditions" yaml:"conditions"`

	// Engine identifies the simulation backend: "stub" or "exec".
	Engine string `json:"engine" yaml:"engine"`

	// Command is the external simulator binary. Only used when the
	// engine is "exec".
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Args are extra arguments passed to the external simulator.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// ResultsConfig configures result persistence.
type ResultsConfig struct {
	// Path is the snapshot file sweep results are saved to.
	Path string `json:"path" yaml:"path"`
}

// LoggingConfig configures gram's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables run logging to runs.jsonl next to the results file.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Feedback: FeedbackConfig{
			Eta: [model.NumMechanisms]float64{5e-4, 1e-4, 5e-4},
		},
		Decay: DecayConfig{
			MRNA:    0.01,
			Protein: 0.001,
		},
		Simulation: SimulationConfig{
			Trajectories: 5000,
			Conditions:   append([]string(nil), model.Conditions...),
			Engine:       "stub",
		},
		Results: ResultsConfig{
			Path: "results/sweep.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.gram/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".gram", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	for i, eta := range c.Feedback.Eta {
		if eta < 0 {
			return fmt.Errorf("feedback strength for mechanism %d must be non-negative, got %g", i, eta)
		}
	}

	if c.Decay.MRNA <= 0 {
		return fmt.Errorf("mrna decay rate must be positive, got %g", c.Decay.MRNA)
	}
	if c.Decay.Protein <= 0 {
		return fmt.Errorf("protein decay rate must be positive, got %g", c.Decay.Protein)
	}

	if c.Simulation.Trajectories <= 0 {
		return fmt.Errorf("trajectories must be positive, got %d", c.Simulation.Trajectories)
	}

	if len(c.Simulation.Conditions) == 0 {
		return fmt.Errorf("at least one simulation condition is required")
	}
	seen := make(map[string]bool, len(c.Simulation.Conditions))
	for _, cond := range c.Simulation.Conditions {
		if cond == "" {
			return fmt.Errorf("simulation conditions must be non-empty strings")
		}
		if seen[cond] {
			return fmt.Errorf("duplicate simulation condition: %s", cond)
		}
		seen[cond] = true
	}

	validEngines := map[string]bool{"": true, "stub": true, "exec": true}
	if !validEngines[c.Simulation.Engine] {
		return fmt.Errorf("invalid engine: %s (valid: stub, exec, or empty for default)", c.Simulation.Engine)
	}
	if c.Simulation.Engine == "exec" && c.Simulation.Command == "" {
		return fmt.Errorf("exec engine requires a simulator command")
	}

	if c.Results.Path == "" {
		return fmt.Errorf("results path must not be empty")
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("GRAM_TRAJECTORIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Trajectories = n
		}
	}

	if v := os.Getenv("GRAM_ENGINE"); v != "" {
		config.Simulation.Engine = v
	}

	if v := os.Getenv("GRAM_SIMULATOR_COMMAND"); v != "" {
		config.Simulation.Command = v
	}

	if v := os.Getenv("GRAM_RESULTS_PATH"); v != "" {
		config.Results.Path = v
	}

	if v := os.Getenv("GRAM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
