package backup

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// ensureOnce tracks per-group snapshot state within a session so that
// repeated modifications (e.g. enable then disable) snapshot the
// original state once instead of after every step.
var (
	ensureOnce  = make(map[string]*sync.Once)
	ensureMutex sync.Mutex
)

// EnsureSnapshot takes at most one snapshot of root per group per
// session. Safe for concurrent use. A failed snapshot resets the guard
// so the caller can retry.
func EnsureSnapshot(mgr *Manager, group, root string) error {
	if root == "" {
		return nil
	}

	ensureMutex.Lock()
	once, exists := ensureOnce[group]
	if !exists {
		once = &sync.Once{}
		ensureOnce[group] = once
	}
	ensureMutex.Unlock()

	var snapErr error
	once.Do(func() {
		_, snapErr = mgr.Snapshot(group, root)
		if snapErr != nil {
			ensureMutex.Lock()
			delete(ensureOnce, group)
			ensureMutex.Unlock()
		}
	})

	if snapErr != nil {
		return errors.Wrapf(snapErr, "snapshotting %s", group)
	}
	return nil
}

// ResetSnapshotState clears the once-per-session guards. Primarily for
// tests.
func ResetSnapshotState() {
	ensureMutex.Lock()
	defer ensureMutex.Unlock()
	ensureOnce = make(map[string]*sync.Once)
}
