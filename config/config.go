// Package config holds the machine parameters the original APEX reference
// hardcodes as preprocessor macros: register-file size, data-memory cell
// count, the program's starting PC, and a trace toggle.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/apex-sim/apexsim/emu"
	"github.com/apex-sim/apexsim/pipeline"
)

// Config is the JSON-serializable set of machine parameters for a run.
type Config struct {
	// Registers is the architectural register-file size. Default: 16.
	Registers int `json:"registers"`

	// DataMemoryCells is the number of addressable data-memory cells.
	// Default: 4096.
	DataMemoryCells int `json:"data_memory_cells"`

	// StartPC is the program counter the first fetched instruction is
	// assigned. Default: 4000.
	StartPC int64 `json:"start_pc"`

	// Trace enables per-cycle stage tracing to stdout.
	Trace bool `json:"trace"`
}

// Default returns a Config with APEX's reference default values.
func Default() *Config {
	return &Config{
		Registers:       emu.DefaultRegisterCount,
		DataMemoryCells: emu.DefaultMemorySize,
		StartPC:         pipeline.StartPC,
		Trace:           false,
	}
}

// Load reads a Config from a JSON file, starting from Default and
// overlaying whatever fields the file sets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate reports whether c's values are usable.
func (c *Config) Validate() error {
	if c.Registers <= 0 {
		return fmt.Errorf("registers must be > 0")
	}
	if c.DataMemoryCells <= 0 {
		return fmt.Errorf("data_memory_cells must be > 0")
	}
	if c.StartPC < 0 {
		return fmt.Errorf("start_pc must be >= 0")
	}
	if c.StartPC%4 != 0 {
		return fmt.Errorf("start_pc must be a multiple of 4")
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
