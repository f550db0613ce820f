package lockfile

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LockGuard = (*Guard)(nil)

// Guard serializes lockfile and installed-tree writes across processes using
// an advisory file lock next to the lockfile.
type Guard struct {
	lock *flock.Flock
}

// NewGuard creates a guard for the lock file at the given path.
func NewGuard(path string) *Guard {
	return &Guard{lock: flock.New(path)}
}

// Acquire takes the lock without blocking. If another operation holds it, the
// call fails immediately with ErrConcurrentOperation.
func (g *Guard) Acquire() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(g.lock.Path()), 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create lock directory")
	}
	locked, err := g.lock.TryLock()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to acquire project lock"), "path", g.lock.Path())
	}
	if !locked {
		return nil, zerr.With(domain.ErrConcurrentOperation, "path", g.lock.Path())
	}
	return func() {
		_ = g.lock.Unlock()
	}, nil
}
