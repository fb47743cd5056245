package executor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// scratchArtifact is a unique temporary file holding one request's
// user code (spec.md §3 "Scratch artifact"). It is acquired at a
// known point in Execute and released via Close, which Execute calls
// from a defer so the file is removed on every exit path, including a
// recovered panic.
type scratchArtifact struct {
	path string
}

// createScratch writes code to a freshly named file under dir, named
// with a UUID rather than a reused counter so concurrent requests
// never collide (spec.md §5).
func createScratch(dir, requestID, code string) (*scratchArtifact, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("pyrunner-%s.py", requestID)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(code), 0o600); err != nil {
		return nil, fmt.Errorf("executor: write scratch file: %w", err)
	}
	return &scratchArtifact{path: path}, nil
}

// newScratchID returns a fresh per-request identifier, used both for
// the scratch file name and as the request's public RequestID.
func newScratchID() string {
	return uuid.NewString()
}

// Close removes the scratch file. Safe to call more than once.
func (s *scratchArtifact) Close() error {
	if s == nil || s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	s.path = ""
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("executor: remove scratch file: %w", err)
	}
	return nil
}
