package fiberflow

import "sync"

// lifecycleCoordinator runs a FiberScheduler's shutdown sequence exactly
// once: stop admitting new work, then reject whatever fibers are still
// sitting in the ready queue so their Result futures don't stay pending
// forever just because the scheduler stopped dispatching. Fibers parked on
// a future are not touched here; they are retired once that future settles.
//
// Close() is safe for concurrent calls; the sequence executes exactly once.
type lifecycleCoordinator struct {
	cancel       func()
	drainPending func()

	once sync.Once
}

func newLifecycleCoordinator(cancel func(), drainPending func()) *lifecycleCoordinator {
	return &lifecycleCoordinator{cancel: cancel, drainPending: drainPending}
}

// Close executes the shutdown sequence exactly once:
// 1) stop admitting new fibers and dispatching ready ones
// 2) drain whatever fibers were left stranded by that cutoff
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.cancel != nil {
			lc.cancel()
		}
		if lc.drainPending != nil {
			lc.drainPending()
		}
	})
}
