package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/pyrunner/internal/policy"
	"github.com/nextlevelbuilder/pyrunner/internal/sandbox"
	"github.com/nextlevelbuilder/pyrunner/internal/validator"
)

const (
	minCodeBytes = 1
	maxCodeBytes = 1 << 20 // 1 MiB, spec.md §3
	memoryPollInterval = 100 * time.Millisecond
	forcedKillGrace    = 500 * time.Millisecond
)

// Bounds is the subset of config.Config the supervisor needs to
// validate a request without importing the config package directly
// (avoids an import cycle and keeps this package testable standalone).
type Bounds struct {
	MinTimeoutSeconds, MaxTimeoutSeconds int
	MinMemoryLimitMiB, MaxMemoryLimitMiB int
	DefaultFDLimit                       int
}

// Supervisor orchestrates one execute() call per spec.md §4.4. It is
// safe to call Execute concurrently from multiple goroutines; no
// mutable state is shared across requests (spec.md §5).
type Supervisor struct {
	SelfExecutable  string
	InterpreterPath string
	ScratchDir      string
	Bounds          Bounds
	Policy          func() *policy.Catalog
	Logger          *slog.Logger
	Tracer          trace.Tracer
}

// New builds a Supervisor with the teacher's pattern of pulling an
// unconfigured (no-op) tracer from the global provider when none is
// injected, so tracing requires no exporter to be wired up.
func New(selfExecutable, interpreterPath, scratchDir string, bounds Bounds, policyFn func() *policy.Catalog, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		SelfExecutable:  selfExecutable,
		InterpreterPath: interpreterPath,
		ScratchDir:      scratchDir,
		Bounds:          bounds,
		Policy:          policyFn,
		Logger:          logger,
		Tracer:          otel.Tracer("pyrunner"),
	}
}

// Execute runs one request to completion, always returning a
// classified Outcome rather than an error — per spec.md §4.4, the
// contract is execute(request) -> outcome, with failures folded into
// the Error/Timeout/MemoryExceeded statuses.
func (s *Supervisor) Execute(ctx context.Context, req Request) (outcome Outcome) {
	start := time.Now()
	requestID := newScratchID()

	ctx, span := s.Tracer.Start(ctx, "pyrunner.execute", trace.WithAttributes(
		attribute.String("request_id", requestID),
		attribute.Int("timeout_seconds", req.TimeoutSeconds),
		attribute.Int("memory_limit_mib", req.MemoryLimitMiB),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("supervisor panic recovered", "request_id", requestID, "panic", r)
			outcome = s.errorOutcome(requestID, start, newRunError(InternalDefect, fmt.Sprintf("internal error: %v", r)))
		}
		span.SetAttributes(
			attribute.String("status", outcome.Status.String()),
			attribute.Float64("execution_time_seconds", outcome.ExecutionTimeSeconds),
		)
	}()

	if err := validateRequestBounds(req, s.Bounds); err != nil {
		return s.errorOutcome(requestID, start, newRunError(ValidationRejected, err.Error()))
	}

	if err := validator.Validate(req.Code, s.Policy()); err != nil {
		return s.errorOutcome(requestID, start, newRunError(ValidationRejected, err.Error()))
	}

	scratch, err := createScratch(s.ScratchDir, requestID, req.Code)
	if err != nil {
		return s.errorOutcome(requestID, start, newRunError(InternalDefect, err.Error()))
	}
	defer func() {
		if cerr := scratch.Close(); cerr != nil {
			s.Logger.Warn("scratch cleanup failed", "request_id", requestID, "error", cerr)
		}
	}()

	fdLimit := s.Bounds.DefaultFDLimit
	if fdLimit <= 0 {
		fdLimit = sandbox.DefaultFDLimit
	}
	spawned, err := sandbox.Spawn(ctx, sandbox.SpawnConfig{
		SelfExecutable:  s.SelfExecutable,
		InterpreterPath: s.InterpreterPath,
		CodeFilePath:    scratch.path,
		Limits: sandbox.Limits{
			MemoryMiB:  req.MemoryLimitMiB,
			CPUSeconds: req.TimeoutSeconds,
			FDCount:    fdLimit,
		},
	})
	if err != nil {
		return s.errorOutcome(requestID, start, newRunError(SpawnFailed, err.Error()))
	}
	// A panic from here on must not leave the child running: kill and
	// reap its group, then let the recover above classify the panic.
	defer func() {
		if r := recover(); r != nil {
			spawned.SignalGroup(sandbox.KillSignal)
			spawned.Wait()
			panic(r)
		}
	}()

	result := s.superviseChild(ctx, spawned, req)
	elapsed := time.Since(start).Seconds()

	outcome = Outcome{
		RequestID:            requestID,
		Status:               result.status,
		Stdout:               result.stdout,
		Stderr:               result.stderr,
		ExecutionTimeSeconds: elapsed,
		PeakMemoryMiB:        result.peakMemoryMiB,
		ErrorSummary:         result.errorSummary,
	}
	return outcome
}

type runResult struct {
	status        Status
	stdout        string
	stderr        string
	peakMemoryMiB *float64
	errorSummary  string
}

// enforcement records which of the deadline/memory enforcers fired
// first, so the classifier can break a race deterministically
// (spec.md §4.4 "Tie-breaks").
type enforcement struct {
	mu        sync.Mutex
	timeoutAt time.Time
	memoryAt  time.Time
}

func (e *enforcement) fireTimeout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timeoutAt.IsZero() {
		e.timeoutAt = time.Now()
	}
}

func (e *enforcement) fireMemory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.memoryAt.IsZero() {
		e.memoryAt = time.Now()
	}
}

// winner returns the earlier-firing category and true, or the zero
// ErrorCategory and false when neither fired (callers must check the
// bool).
func (e *enforcement) winner() (ErrorCategory, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.timeoutAt.IsZero() && e.memoryAt.IsZero():
		return 0, false
	case e.timeoutAt.IsZero():
		return MemoryExceededFired, true
	case e.memoryAt.IsZero():
		return TimeoutFired, true
	case e.timeoutAt.Before(e.memoryAt):
		return TimeoutFired, true
	default:
		return MemoryExceededFired, true
	}
}

// superviseChild runs step 4 of spec.md §4.4: concurrent stream
// collection, memory sampling, and deadline enforcement, then step 5's
// classification.
func (s *Supervisor) superviseChild(ctx context.Context, spawned *sandbox.Spawned, req Request) runResult {
	var stdoutBuf, stderrBuf bytes.Buffer
	var streamsWG sync.WaitGroup
	streamsWG.Add(2)
	go func() {
		defer streamsWG.Done()
		io.Copy(&stdoutBuf, spawned.Stdout)
	}()
	go func() {
		defer streamsWG.Done()
		io.Copy(&stderrBuf, spawned.Stderr)
	}()

	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()

	enf := &enforcement{}
	var peakBytes uint64
	var peakMu sync.Mutex

	g, gctx := errgroup.WithContext(watchCtx)

	g.Go(func() error {
		streamsWG.Wait()
		stopWatching()
		return nil
	})

	g.Go(func() error {
		return s.pollMemory(gctx, spawned, req.MemoryLimitMiB, enf, &peakMu, &peakBytes)
	})

	g.Go(func() error {
		return s.enforceDeadline(gctx, spawned, req.TimeoutSeconds, enf)
	})

	g.Wait() // errors are only ever nil here; enforcement state carries the signal

	streamsWG.Wait() // belt-and-suspenders: guarantee drained before Wait()
	waitErr := spawned.Wait()

	peakMu.Lock()
	peak := peakBytes
	peakMu.Unlock()

	var peakMiB *float64
	if peak > 0 {
		v := float64(peak) / (1 << 20)
		peakMiB = &v
	}

	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if category, fired := enf.winner(); fired {
		if category == TimeoutFired {
			return runResult{status: Timeout, stdout: stdout, stderr: appendNotice(stderr, "pyrunner: execution timed out"), peakMemoryMiB: peakMiB, errorSummary: "execution timed out"}
		}
		return runResult{status: MemoryExceeded, stdout: stdout, stderr: appendNotice(stderr, "pyrunner: memory limit exceeded"), peakMemoryMiB: peakMiB, errorSummary: "memory limit exceeded"}
	}

	if spawned.KilledByAddressSpaceLimit() {
		return runResult{status: MemoryExceeded, stdout: stdout, stderr: appendNotice(stderr, "pyrunner: memory limit exceeded"), peakMemoryMiB: peakMiB, errorSummary: "memory limit exceeded"}
	}

	exitCode := spawned.ExitCode()
	if exitCode == 0 && waitErr == nil {
		return runResult{status: Success, stdout: stdout, stderr: stderr, peakMemoryMiB: peakMiB}
	}

	summary := fmt.Sprintf("interpreter exited with status %d", exitCode)
	if waitErr != nil && exitCode < 0 {
		summary = waitErr.Error()
	}
	return runResult{status: Error, stdout: stdout, stderr: stderr, peakMemoryMiB: peakMiB, errorSummary: summary}
}

func (s *Supervisor) pollMemory(ctx context.Context, spawned *sandbox.Spawned, memoryLimitMiB int, enf *enforcement, peakMu *sync.Mutex, peakBytes *uint64) error {
	threshold := uint64(memoryLimitMiB) << 20
	ticker := time.NewTicker(memoryPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, err := sandbox.ReadRSSBytes(spawned.PID)
			if err != nil {
				continue // process likely exited; stream-done watcher will stop us shortly
			}
			peakMu.Lock()
			if rss > *peakBytes {
				*peakBytes = rss
			}
			peakMu.Unlock()
			if rss > threshold {
				enf.fireMemory()
				spawned.SignalGroup(sandbox.KillSignal)
				return nil
			}
		}
	}
}

func (s *Supervisor) enforceDeadline(ctx context.Context, spawned *sandbox.Spawned, timeoutSeconds int, enf *enforcement) error {
	timer := time.NewTimer(time.Duration(timeoutSeconds) * time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}
	enf.fireTimeout()
	spawned.SignalGroup(sandbox.TermSignal)
	grace := time.NewTimer(forcedKillGrace)
	defer grace.Stop()
	select {
	case <-ctx.Done():
	case <-grace.C:
		spawned.SignalGroup(sandbox.KillSignal)
	}
	return nil
}

func (s *Supervisor) errorOutcome(requestID string, start time.Time, rerr *runError) Outcome {
	s.Logger.Info("execution rejected before spawn", "request_id", requestID, "category", rerr.category.String())
	return Outcome{
		RequestID:            requestID,
		Status:               statusFor(rerr.category),
		ExecutionTimeSeconds: time.Since(start).Seconds(),
		ErrorSummary:         rerr.Error(),
	}
}

func appendNotice(stderr, notice string) string {
	if stderr == "" {
		return notice
	}
	if strings.HasSuffix(stderr, "\n") {
		return stderr + notice
	}
	return stderr + "\n" + notice
}

func validateRequestBounds(req Request, b Bounds) error {
	trimmed := strings.TrimSpace(req.Code)
	if len(trimmed) < minCodeBytes {
		return fmt.Errorf("code must not be empty")
	}
	if len(req.Code) > maxCodeBytes {
		return fmt.Errorf("code exceeds the 1 MiB size limit")
	}
	if req.TimeoutSeconds < b.MinTimeoutSeconds || req.TimeoutSeconds > b.MaxTimeoutSeconds {
		return fmt.Errorf("timeout_seconds must be between %d and %d, got %d", b.MinTimeoutSeconds, b.MaxTimeoutSeconds, req.TimeoutSeconds)
	}
	if req.MemoryLimitMiB < b.MinMemoryLimitMiB || req.MemoryLimitMiB > b.MaxMemoryLimitMiB {
		return fmt.Errorf("memory_limit_mib must be between %d and %d, got %d", b.MinMemoryLimitMiB, b.MaxMemoryLimitMiB, req.MemoryLimitMiB)
	}
	return nil
}
