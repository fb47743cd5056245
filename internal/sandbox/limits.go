// Package sandbox spawns the sandboxed interpreter in a fresh process
// group with OS-enforced resource caps installed before the
// interpreter image is loaded. The caps are applied by re-executing
// this same binary as a tiny child-init step (see child_exec.go) that
// calls unix.Setrlimit and then overlays the interpreter via
// syscall.Exec — the only way to run Go code between fork and exec
// without reaching into the runtime's internal forkAndExecInChild.
package sandbox

import "errors"

// ErrPlatformUnsupported is returned by Spawn on a GOOS where the
// resource-limit primitives this package depends on are not wired up.
// The spawner refuses to start a child rather than run one unconfined.
var ErrPlatformUnsupported = errors.New("sandbox: resource limits unsupported on this platform")

// HardCPUCeilingSeconds bounds CPU-bound runaways even if the
// supervisor's wall-clock enforcement fails, independent of any
// per-request timeout (spec.md §4.3/§5).
const HardCPUCeilingSeconds = 300

// DefaultFDLimit is used when a caller does not specify one.
const DefaultFDLimit = 50

// Limits is the (memory, cpu, fd) triple applied to the child before
// its image is replaced by the interpreter.
type Limits struct {
	MemoryMiB  int
	CPUSeconds int
	FDCount    int
}

// AddressSpaceBytes converts MemoryMiB to the RLIMIT_AS value.
func (l Limits) AddressSpaceBytes() uint64 {
	return uint64(l.MemoryMiB) << 20
}

// EffectiveCPUSeconds is the smaller of the requested CPU cap and the
// hard ceiling.
func (l Limits) EffectiveCPUSeconds() int {
	if l.CPUSeconds <= 0 || l.CPUSeconds > HardCPUCeilingSeconds {
		return HardCPUCeilingSeconds
	}
	return l.CPUSeconds
}

// EffectiveFDCount is FDCount, or DefaultFDLimit if unset.
func (l Limits) EffectiveFDCount() int {
	if l.FDCount <= 0 {
		return DefaultFDLimit
	}
	return l.FDCount
}
