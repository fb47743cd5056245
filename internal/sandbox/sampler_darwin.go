//go:build darwin

package sandbox

import "golang.org/x/sys/unix"

// ReadRSSBytes approximates resident-set size on Darwin via
// RUSAGE_CHILDREN, which only updates when a child is reaped — not a
// true live poll. This is the degraded-enforcement case the spec's
// memory sampler open question accepts: RLIMIT_AS is advisory on
// Darwin for some allocators, so the sampler is already the primary
// enforcement path there, and this approximation only ever under-
// reports mid-run, never over-reports after exit.
func ReadRSSBytes(pid int) (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &ru); err != nil {
		return 0, err
	}
	// ru.Maxrss is in bytes on Darwin (unlike Linux's KB units).
	return uint64(ru.Maxrss), nil
}
