//go:build linux || darwin

package sandbox

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// RunChildInit is the entry point the cmd package's hidden subcommand
// calls after being re-exec'd by Spawn. It reads the limits triple
// from the environment Spawn set, applies RLIMIT_AS/RLIMIT_CPU/
// RLIMIT_NOFILE/RLIMIT_CORE to the current (about to be replaced)
// process, then overlays the interpreter image with syscall.Exec.
// On success this function never returns; on failure it returns the
// error that should be reported as a spawn failure.
func RunChildInit(interpreterPath, codeFilePath string) error {
	limits := Limits{
		MemoryMiB:  parseEnvInt(os.Getenv(envMemoryMiB)),
		CPUSeconds: parseEnvInt(os.Getenv(envCPUSeconds)),
		FDCount:    parseEnvInt(os.Getenv(envFDCount)),
	}
	if err := applyLimits(limits); err != nil {
		return fmt.Errorf("sandbox: apply limits: %w", err)
	}

	// Isolated mode: the interpreter sees none of the parent's
	// environment or user-site configuration (spec.md §6 interpreter
	// contract): "-I" turns on the interpreter's isolated mode, and the
	// environment is reduced to a fixed PATH.
	env := []string{"PATH=/usr/bin:/bin"}
	argv := []string{interpreterPath, "-I", codeFilePath}
	if err := syscall.Exec(interpreterPath, argv, env); err != nil {
		return fmt.Errorf("sandbox: exec interpreter: %w", err)
	}
	return nil // unreachable: syscall.Exec only returns on error
}

// applyLimits installs the four OS-level caps from spec.md §4.3. Each
// is applied as both soft and hard so the child cannot raise its own
// ceiling.
func applyLimits(l Limits) error {
	caps := []struct {
		resource int
		cur, max uint64
	}{
		{unix.RLIMIT_AS, l.AddressSpaceBytes(), l.AddressSpaceBytes()},
		{unix.RLIMIT_CPU, uint64(l.EffectiveCPUSeconds()), uint64(l.EffectiveCPUSeconds())},
		{unix.RLIMIT_NOFILE, uint64(l.EffectiveFDCount()), uint64(l.EffectiveFDCount())},
		{unix.RLIMIT_CORE, 0, 0},
	}
	for _, c := range caps {
		rl := unix.Rlimit{Cur: c.cur, Max: c.max}
		if err := unix.Setrlimit(c.resource, &rl); err != nil {
			return fmt.Errorf("setrlimit(%d): %w", c.resource, err)
		}
	}
	return nil
}
