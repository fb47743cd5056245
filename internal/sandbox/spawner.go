package sandbox

import (
	"io"
	"os/exec"
)

// TermSignal and KillSignal are the signals SignalGroup accepts,
// expressed as plain ints (rather than syscall.Signal) so callers in
// platform-agnostic packages like internal/executor don't need a
// build-tag-specific import just to request a termination.
const (
	TermSignal = 15
	KillSignal = 9
)

// childInitArg is the hidden cmd package subcommand this package
// re-execs itself as, so that unix.Setrlimit and syscall.Exec can run
// as raw Go code in the child before the interpreter image loads.
const childInitArg = "__sandbox_child_init__"

// SpawnConfig is the input to Spawn.
type SpawnConfig struct {
	// SelfExecutable is the path to this binary (os.Executable()),
	// re-invoked with the hidden child-init subcommand.
	SelfExecutable string
	// InterpreterPath is the sandboxed interpreter binary.
	InterpreterPath string
	// CodeFilePath is the scratch file holding the user's source.
	CodeFilePath string
	Limits       Limits
}

// Spawned is a handle to a running (or just-started) sandboxed child.
// Per spec.md §4.3, Setpgid puts the child in a new process group
// equal to its own PID, so PGID == PID here.
type Spawned struct {
	Cmd    *exec.Cmd
	PID    int
	PGID   int
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

// childArgs builds the argv re-exec'ing this binary into the hidden
// child-init subcommand, which applies limits and then overlays the
// interpreter via syscall.Exec.
func childArgs(cfg SpawnConfig) []string {
	return []string{
		cfg.SelfExecutable,
		childInitArg,
		cfg.InterpreterPath,
		cfg.CodeFilePath,
	}
}
