// Package execlock serializes invocations of the external az binary.
//
// The az CLI keeps its credential/token cache in plain files under ~/.azure.
// Two az processes refreshing a token at the same time can corrupt that cache,
// so the runner holds this lock across the whole lifetime of every az process
// it spawns. The lock is advisory and file-backed, which also covers sibling
// azdemo processes on the same host, not just goroutines in this one.
//
// This is a deliberate correctness-over-throughput trade-off: at most one az
// process is in flight at any instant, even when many cleanup workers are
// preparing or parsing concurrently.
package execlock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// retryInterval is the interval between consecutive attempts to acquire the
// file lock. 50ms keeps the wait after the holder releases short without
// busy-polling.
const retryInterval = 50 * time.Millisecond

// Lock guards the moment of az process invocation. The in-process mutex
// orders goroutines; the file lock orders processes.
type Lock struct {
	mu   sync.Mutex
	path string
}

// New creates a lock backed by the given file path. An empty path uses a
// well-known file in the system temp directory.
func New(path string) *Lock {
	if path == "" {
		path = filepath.Join(os.TempDir(), "azdemo-az.lock")
	}
	return &Lock{path: path}
}

// Acquire takes the lock, blocking until it is held or ctx is done. The
// returned release function must be called exactly once after the spawned
// process has exited.
func (l *Lock) Acquire(ctx context.Context) (release func(), err error) {
	l.mu.Lock()

	fl := flock.New(l.path)
	locked, err := fl.TryLockContext(ctx, retryInterval)
	if err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("acquiring az lock %s: %w", l.path, err)
	}
	if !locked {
		l.mu.Unlock()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring az lock %s: %w", l.path, ctx.Err())
		}
		return nil, fmt.Errorf("acquiring az lock %s: lock not acquired", l.path)
	}

	// The lock file is intentionally left on disk: removing it would race
	// with another process that just acquired a lock on the same inode.
	return func() {
		_ = fl.Close()
		l.mu.Unlock()
	}, nil
}
