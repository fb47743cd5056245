// Package executor implements the execution supervisor: it validates
// a request, writes a scratch file, spawns the sandboxed interpreter,
// concurrently collects its streams and resource usage, enforces a
// deadline, and classifies the outcome (spec.md §4.4).
package executor

// Request is the input to Execute. It mirrors spec.md §3's
// ExecutionRequest; TimeoutSeconds and MemoryLimitMiB of 0 mean "use
// the service default" and are resolved by the caller (pkg/pyrunner)
// before Execute sees them.
type Request struct {
	Code             string
	TimeoutSeconds   int
	MemoryLimitMiB   int
}

// Status is the four-way outcome classification of spec.md §3/§4.4.
type Status int

const (
	Success Status = iota
	Error
	Timeout
	MemoryExceeded
)

// String renders the lowercase transport spelling (spec.md §6).
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Error:
		return "error"
	case Timeout:
		return "timeout"
	case MemoryExceeded:
		return "memory_exceeded"
	default:
		return "unknown"
	}
}

// Outcome is the result of Execute. PeakMemoryMiB is nil if no sample
// was ever taken (e.g. the child never started).
type Outcome struct {
	RequestID            string
	Status               Status
	Stdout               string
	Stderr               string
	ExecutionTimeSeconds float64
	PeakMemoryMiB        *float64
	ErrorSummary         string
}
