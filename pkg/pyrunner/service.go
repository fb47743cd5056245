// Package pyrunner is the public entry point: a Service that accepts
// Python source, admits or rejects it against the active policy
// catalog, and runs admitted code under the sandbox supervisor.
package pyrunner

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nextlevelbuilder/pyrunner/internal/config"
	"github.com/nextlevelbuilder/pyrunner/internal/executor"
)

// Request is the public execution request.
type Request struct {
	Code           string
	TimeoutSeconds int
	MemoryLimitMiB int
}

// Status mirrors executor.Status for callers that don't want to
// import the internal package.
type Status = executor.Status

const (
	Success        = executor.Success
	Error          = executor.Error
	Timeout        = executor.Timeout
	MemoryExceeded = executor.MemoryExceeded
)

// Outcome is the public execution result.
type Outcome = executor.Outcome

// HealthInfo is the fixed health-probe descriptor.
type HealthInfo struct {
	Name             string   `json:"name"`
	Version          string   `json:"version"`
	MaxTimeoutSeconds int     `json:"max_timeout_seconds"`
	MaxMemoryLimitMiB int     `json:"max_memory_limit_mib"`
	PermittedImports  []string `json:"permitted_imports"`
}

// Version is overridden at build time via -ldflags; "dev" otherwise.
var Version = "dev"

// Service is the top-level object embedding applications construct to
// run sandboxed Python. It owns no per-request state, so Execute is
// safe to call concurrently.
type Service struct {
	cfg            *config.Config
	policyWatcher  *config.PolicyWatcher
	supervisor     *executor.Supervisor
}

// New builds a Service from a loaded Config. selfExecutable should be
// the result of os.Executable() in the calling binary, so the sandbox
// can re-exec itself for the child-init step.
func New(cfg *config.Config, selfExecutable string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	snap := cfg.Snapshot()

	watcher, err := config.WatchPolicy(snap.PolicyOverrideFile, logger)
	if err != nil {
		return nil, fmt.Errorf("pyrunner: load policy: %w", err)
	}

	sup := executor.New(
		selfExecutable,
		snap.InterpreterPath,
		snap.ScratchDir,
		executor.Bounds{
			MinTimeoutSeconds: snap.MinTimeoutSeconds,
			MaxTimeoutSeconds: snap.MaxTimeoutSeconds,
			MinMemoryLimitMiB: snap.MinMemoryLimitMiB,
			MaxMemoryLimitMiB: snap.MaxMemoryLimitMiB,
			DefaultFDLimit:    snap.DefaultFDLimit,
		},
		watcher.Catalog,
		logger,
	)

	return &Service{cfg: cfg, policyWatcher: watcher, supervisor: sup}, nil
}

// Execute resolves zero-value timeout/memory to the service defaults
// and runs the request to completion.
func (s *Service) Execute(ctx context.Context, req Request) Outcome {
	snap := s.cfg.Snapshot()
	timeout := s.cfg.ClampTimeout(req.TimeoutSeconds)
	memory := req.MemoryLimitMiB
	if memory == 0 {
		memory = snap.DefaultMemoryLimitMiB
	}
	return s.supervisor.Execute(ctx, executor.Request{
		Code:           req.Code,
		TimeoutSeconds: timeout,
		MemoryLimitMiB: memory,
	})
}

// HealthInfo reports the fixed service descriptor (spec.md §6).
func (s *Service) HealthInfo() HealthInfo {
	snap := s.cfg.Snapshot()
	cat := s.policyWatcher.Catalog()
	return HealthInfo{
		Name:              "pyrunner",
		Version:           Version,
		MaxTimeoutSeconds: snap.MaxTimeoutSeconds,
		MaxMemoryLimitMiB: snap.MaxMemoryLimitMiB,
		PermittedImports:  cat.PermittedImportNames(),
	}
}

// Close releases the background policy watcher.
func (s *Service) Close() error {
	return s.policyWatcher.Close()
}

// SelfExecutable resolves the running binary's own path, failing
// loudly rather than silently falling back to argv[0] (which may not
// be an absolute, re-execable path).
func SelfExecutable() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("pyrunner: resolve self executable: %w", err)
	}
	return path, nil
}
