//go:build !linux && !darwin

package sandbox

import "context"

// Spawn refuses to start on a platform where this package's rlimit
// and process-group primitives are not wired up, rather than
// launching an unconfined child (spec.md §4.3: "refuse to start
// rather than silently weaken isolation").
func Spawn(ctx context.Context, cfg SpawnConfig) (*Spawned, error) {
	return nil, ErrPlatformUnsupported
}

// ReadRSSBytes has no implementation on this platform.
func ReadRSSBytes(pid int) (uint64, error) {
	return 0, ErrPlatformUnsupported
}

// RunChildInit has no implementation on this platform; the cmd package's
// hidden child-init subcommand should never be reached here since
// Spawn already refuses to start.
func RunChildInit(interpreterPath, codeFilePath string) error {
	return ErrPlatformUnsupported
}

// The following Spawned methods exist only so internal/executor, which
// carries no build tag of its own, compiles on every platform. Spawn
// never returns a non-nil *Spawned here, so these are unreachable.

func (s *Spawned) SignalGroup(sig int) error { return ErrPlatformUnsupported }

func (s *Spawned) Wait() error { return ErrPlatformUnsupported }

func (s *Spawned) ExitCode() int { return -1 }

func (s *Spawned) KilledByAddressSpaceLimit() bool { return false }
