// Package config loads bridge configuration from a JSON file on disk,
// the same on-disk shape go-sequence/config uses (Default/Load/Save
// against ~/.config/<app>/config.json), extended with environment
// variable overrides loaded via github.com/joho/godotenv so the bridge
// can run from a .env file in containerized deployments.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the full set of bridge tunables, plus the port names and
// model endpoint needed to wire the midiio and model packages, plus
// process-level options (Monitor).
type Config struct {
	BeatsPerBar  uint64  `json:"beatsPerBar"`
	Measures     uint64  `json:"measures"` // gen_bars, N
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"topP"`
	TicksPerBeat uint16  `json:"ticksPerBeat"`

	ClockPortName  string `json:"clockPortName"`
	InputPortName  string `json:"inputPortName"`
	OutputPortName string `json:"outputPortName"`

	ModelEndpoint string `json:"modelEndpoint"`

	Monitor bool `json:"monitor"`
}

// DefaultConfig returns the bridge's baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		BeatsPerBar:  4,
		Measures:     2,
		Temperature:  0.8,
		TopP:         0.9,
		TicksPerBeat: 480,
		Monitor:      true,
	}
}

// Dir returns the config directory path, ~/.config/aria-bridge.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "aria-bridge"), nil
}

// Path returns the full path to config.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, falling back to defaults if the
// file does not exist, then applies environment overrides.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		cfg := DefaultConfig()
		applyEnv(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// Save writes the config to disk, creating the config directory if
// needed.
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnv layers ARIA_-prefixed environment variables over cfg. A
// .env file in the working directory is loaded first, if present;
// godotenv.Load silently no-ops when the file is absent.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("ARIA_BEATS_PER_BAR"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.BeatsPerBar = n
		}
	}
	if v := os.Getenv("ARIA_MEASURES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Measures = n
		}
	}
	if v := os.Getenv("ARIA_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("ARIA_TOP_P"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TopP = f
		}
	}
	if v := os.Getenv("ARIA_TICKS_PER_BEAT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.TicksPerBeat = uint16(n)
		}
	}
	if v := os.Getenv("ARIA_CLOCK_PORT"); v != "" {
		cfg.ClockPortName = v
	}
	if v := os.Getenv("ARIA_INPUT_PORT"); v != "" {
		cfg.InputPortName = v
	}
	if v := os.Getenv("ARIA_OUTPUT_PORT"); v != "" {
		cfg.OutputPortName = v
	}
	if v := os.Getenv("ARIA_MODEL_ENDPOINT"); v != "" {
		cfg.ModelEndpoint = v
	}
	if v := os.Getenv("ARIA_MONITOR"); v != "" {
		cfg.Monitor = v != "0" && v != "false"
	}
}
