package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Load reads config from a JSON5 file, then overlays env vars. A
// missing file is not an error: Default() plus env overrides is a
// valid configuration.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.ValidateBounds(cfg.DefaultTimeoutSeconds, cfg.DefaultMemoryLimitMiB); err != nil {
		return nil, fmt.Errorf("config: invalid default bounds: %w", err)
	}
	if cfg.MinTimeoutSeconds > cfg.MaxTimeoutSeconds || cfg.MinMemoryLimitMiB > cfg.MaxMemoryLimitMiB {
		return nil, fmt.Errorf("config: min bound exceeds max bound")
	}
	return cfg, nil
}

// applyEnvOverrides overlays PYRUNNER_* env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	envStr("PYRUNNER_INTERPRETER_PATH", &c.InterpreterPath)
	envStr("PYRUNNER_SCRATCH_DIR", &c.ScratchDir)
	envStr("PYRUNNER_POLICY_OVERRIDE_FILE", &c.PolicyOverrideFile)
	envInt("PYRUNNER_DEFAULT_TIMEOUT_SECONDS", &c.DefaultTimeoutSeconds)
	envInt("PYRUNNER_MIN_TIMEOUT_SECONDS", &c.MinTimeoutSeconds)
	envInt("PYRUNNER_MAX_TIMEOUT_SECONDS", &c.MaxTimeoutSeconds)
	envInt("PYRUNNER_DEFAULT_MEMORY_LIMIT_MIB", &c.DefaultMemoryLimitMiB)
	envInt("PYRUNNER_MIN_MEMORY_LIMIT_MIB", &c.MinMemoryLimitMiB)
	envInt("PYRUNNER_MAX_MEMORY_LIMIT_MIB", &c.MaxMemoryLimitMiB)
	envInt("PYRUNNER_DEFAULT_FD_LIMIT", &c.DefaultFDLimit)

	if c.ScratchDir == "" {
		c.ScratchDir = os.TempDir()
	}
}

// Save writes the config as indented JSON, which is valid JSON5 and
// readable back by Load. json5 itself is decode-only, matching the
// teacher's own Save (encoding/json) despite the json5 load path.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
