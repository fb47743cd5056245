package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/nextlevelbuilder/pyrunner/internal/policy"
)

func testBounds() Bounds {
	return Bounds{
		MinTimeoutSeconds: 1, MaxTimeoutSeconds: 300,
		MinMemoryLimitMiB: 64, MaxMemoryLimitMiB: 2048,
		DefaultFDLimit: 50,
	}
}

func testSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	return New("/nonexistent/self", "/usr/bin/python3", t.TempDir(), testBounds(), policy.Default, slog.Default())
}

// Rejections happen before a child is ever spawned, so these are
// deterministic without a real interpreter present.

func TestExecute_RejectsEmptyCode(t *testing.T) {
	s := testSupervisor(t)
	out := s.Execute(context.Background(), Request{Code: "   \n", TimeoutSeconds: 30, MemoryLimitMiB: 256})
	if out.Status != Error {
		t.Fatalf("status = %v, want Error", out.Status)
	}
	if out.ExecutionTimeSeconds > 1 {
		t.Fatalf("execution time should be near-zero for a rejected request, got %v", out.ExecutionTimeSeconds)
	}
}

func TestExecute_RejectsOversizedCode(t *testing.T) {
	s := testSupervisor(t)
	huge := make([]byte, maxCodeBytes+1)
	for i := range huge {
		huge[i] = '#'
	}
	out := s.Execute(context.Background(), Request{Code: string(huge), TimeoutSeconds: 30, MemoryLimitMiB: 256})
	if out.Status != Error {
		t.Fatalf("status = %v, want Error", out.Status)
	}
}

func TestExecute_RejectsTimeoutOutOfBounds(t *testing.T) {
	s := testSupervisor(t)
	out := s.Execute(context.Background(), Request{Code: "print(1)", TimeoutSeconds: 0, MemoryLimitMiB: 256})
	if out.Status != Error {
		t.Fatalf("status = %v, want Error", out.Status)
	}
}

func TestExecute_RejectsMemoryOutOfBounds(t *testing.T) {
	s := testSupervisor(t)
	out := s.Execute(context.Background(), Request{Code: "print(1)", TimeoutSeconds: 30, MemoryLimitMiB: 1})
	if out.Status != Error {
		t.Fatalf("status = %v, want Error", out.Status)
	}
}

func TestExecute_RejectsForbiddenImport(t *testing.T) {
	s := testSupervisor(t)
	out := s.Execute(context.Background(), Request{Code: "import os\n", TimeoutSeconds: 30, MemoryLimitMiB: 256})
	if out.Status != Error {
		t.Fatalf("status = %v, want Error", out.Status)
	}
	if out.ErrorSummary == "" {
		t.Fatalf("expected a non-empty error summary for a rejected import")
	}
}

// TestExecute_SpawnFailureIsReported exercises the SpawnFailed path: a
// self-executable that cannot possibly exist causes exec.Start itself
// to fail, independent of any interpreter being installed.
func TestExecute_SpawnFailureIsReported(t *testing.T) {
	s := testSupervisor(t)
	out := s.Execute(context.Background(), Request{Code: "print(1)\n", TimeoutSeconds: 5, MemoryLimitMiB: 256})
	if out.Status != Error {
		t.Fatalf("status = %v, want Error", out.Status)
	}
	if out.RequestID == "" {
		t.Fatalf("expected a request id even on a spawn failure")
	}
}

// Full spawn/timeout/memory-exceeded/success life cycles require a
// real python3 binary and the hidden __sandbox_child_init__
// subcommand that only the cmd package registers; those are left to
// that integration level rather than here.

// TestExecute_ConcurrentCallsDoNotCrossTalk fires many simultaneous
// Execute calls against one shared Supervisor, each rejecting on a
// distinct forbidden import, and checks every outcome's error summary
// names its own request's module and no other's — showing outcomes and
// request IDs aren't shared or interleaved across goroutines (these
// requests are rejected before any scratch file is written).
func TestExecute_ConcurrentCallsDoNotCrossTalk(t *testing.T) {
	s := testSupervisor(t)
	modules := []string{"os", "sys", "subprocess", "socket", "ctypes", "pickle"}

	var wg sync.WaitGroup
	outs := make([]Outcome, len(modules))
	for i, mod := range modules {
		wg.Add(1)
		go func(i int, mod string) {
			defer wg.Done()
			code := fmt.Sprintf("import %s\n", mod)
			outs[i] = s.Execute(context.Background(), Request{Code: code, TimeoutSeconds: 30, MemoryLimitMiB: 256})
		}(i, mod)
	}
	wg.Wait()

	seenIDs := make(map[string]bool, len(modules))
	for i, mod := range modules {
		out := outs[i]
		if out.Status != Error {
			t.Fatalf("module %s: status = %v, want Error", mod, out.Status)
		}
		if !strings.Contains(out.ErrorSummary, mod) {
			t.Fatalf("module %s: error summary %q does not name its own module", mod, out.ErrorSummary)
		}
		for j, other := range modules {
			if j == i {
				continue
			}
			if strings.Contains(out.ErrorSummary, other) {
				t.Fatalf("module %s: error summary %q leaked module %s from another goroutine", mod, out.ErrorSummary, other)
			}
		}
		if out.RequestID == "" || seenIDs[out.RequestID] {
			t.Fatalf("module %s: request id %q was empty or reused across goroutines", mod, out.RequestID)
		}
		seenIDs[out.RequestID] = true
	}
}

// TestExecute_ConcurrentCallsGetDistinctScratchFiles drives several
// simultaneous Execute calls far enough to each write their own scratch
// file (validation passes, spawn then fails against a nonexistent
// self-executable) and checks every RequestID — and so every scratch
// filename derived from it — is unique.
func TestExecute_ConcurrentCallsGetDistinctScratchFiles(t *testing.T) {
	s := testSupervisor(t)
	const n = 20

	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := s.Execute(context.Background(), Request{Code: "print(1)\n", TimeoutSeconds: 30, MemoryLimitMiB: 256})
			ids[i] = out.RequestID
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i, id := range ids {
		if id == "" {
			t.Fatalf("call %d: empty request id", i)
		}
		if seen[id] {
			t.Fatalf("call %d: request id %q (and its scratch filename) collided with another goroutine", i, id)
		}
		seen[id] = true
	}
}

func TestEnforcement_WinnerPicksEarlierFire(t *testing.T) {
	e := &enforcement{}
	e.fireTimeout()
	e.fireMemory()
	cat, fired := e.winner()
	if !fired || cat != TimeoutFired {
		t.Fatalf("winner = (%v, %v), want (TimeoutFired, true)", cat, fired)
	}
}

func TestEnforcement_NoWinnerWhenNothingFired(t *testing.T) {
	e := &enforcement{}
	_, fired := e.winner()
	if fired {
		t.Fatalf("expected no winner when nothing fired")
	}
}

func TestAppendNotice_HandlesEmptyAndTrailingNewline(t *testing.T) {
	if got := appendNotice("", "x"); got != "x" {
		t.Fatalf("appendNotice empty = %q", got)
	}
	if got := appendNotice("err\n", "x"); got != "err\nx" {
		t.Fatalf("appendNotice trailing newline = %q", got)
	}
	if got := appendNotice("err", "x"); got != "err\nx" {
		t.Fatalf("appendNotice no trailing newline = %q", got)
	}
}
