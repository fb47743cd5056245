package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Bounds(t *testing.T) {
	c := Default()
	if err := c.ValidateBounds(30, 512); err != nil {
		t.Fatalf("want defaults in bounds, got %v", err)
	}
}

func TestValidateBounds_RejectsOutOfRange(t *testing.T) {
	c := Default()
	cases := []struct{ timeout, mem int }{
		{0, 512}, {301, 512}, {30, 1}, {30, 4096},
	}
	for _, tc := range cases {
		if err := c.ValidateBounds(tc.timeout, tc.mem); err == nil {
			t.Fatalf("timeout=%d mem=%d: want bounds error", tc.timeout, tc.mem)
		}
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.json5"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultTimeoutSeconds != 30 {
		t.Fatalf("want default timeout 30, got %d", c.DefaultTimeoutSeconds)
	}
}

func TestLoad_ParsesJSON5File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	body := "{\n  // comment is valid JSON5\n  interpreter_path: \"python3.11\",\n  default_memory_limit_mib: 256,\n}\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.InterpreterPath != "python3.11" {
		t.Fatalf("want overridden interpreter path, got %q", c.InterpreterPath)
	}
	if c.DefaultMemoryLimitMiB != 256 {
		t.Fatalf("want overridden memory default, got %d", c.DefaultMemoryLimitMiB)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	os.WriteFile(path, []byte(`{interpreter_path: "python3.11"}`), 0o644)
	t.Setenv("PYRUNNER_INTERPRETER_PATH", "python3.12")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.InterpreterPath != "python3.12" {
		t.Fatalf("want env override to win, got %q", c.InterpreterPath)
	}
}

func TestLoad_RejectsInvertedBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	os.WriteFile(path, []byte(`{min_timeout_seconds: 100, max_timeout_seconds: 10}`), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatalf("want error for inverted bounds")
	}
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	c := Default()
	snap := c.Snapshot()
	snap.DefaultTimeoutSeconds = 999
	if c.DefaultTimeoutSeconds == 999 {
		t.Fatalf("snapshot mutation leaked back into original")
	}
}

func TestClampTimeout_ZeroResolvesToDefault(t *testing.T) {
	c := Default()
	if got := c.ClampTimeout(0); got != c.DefaultTimeoutSeconds {
		t.Fatalf("ClampTimeout(0) = %d, want default %d", got, c.DefaultTimeoutSeconds)
	}
}

func TestClampTimeout_NonzeroPassesThrough(t *testing.T) {
	c := Default()
	if got := c.ClampTimeout(120); got != 120 {
		t.Fatalf("ClampTimeout(120) = %d, want 120 unchanged", got)
	}
}
