package fiberflow

import (
	"sync"

	"github.com/kestrelflow/fiberflow/metrics"
)

// FiberScheduler runs fibers cooperatively: Dispatch hands control to one
// Ready fiber at a time, on the calling goroutine, and only moves on to the
// next once that fiber yields (via Await) or exits. No two fibers belonging
// to the same scheduler ever execute concurrently with each other — the
// scheduler's own dispatch loop is the single dedicated goroutine that
// exclusivity assumes, so queue mutation only needs a plain mutex rather
// than a true recursive lock.
type FiberScheduler struct {
	cfg    Config
	stacks *stackPool

	mu      sync.Mutex
	ready   []*Fiber
	current *Fiber
	waiting int
	closed  bool

	nextID uint64

	fibersCreated   metrics.Counter
	fibersCompleted metrics.Counter
	contextSwitches metrics.Counter
	readyDepth      metrics.UpDownCounter

	lifecycle *lifecycleCoordinator
}

// NewScheduler builds a FiberScheduler. With no options it uses a dynamic
// stack pool, 64KiB stacks, an unbounded per-Dispatch budget, and a no-op
// metrics provider.
func NewScheduler(opts ...Option) *FiberScheduler {
	cfg := build(opts)

	s := &FiberScheduler{
		cfg:    cfg,
		stacks: newStackPool(cfg),
	}

	s.fibersCreated = cfg.Metrics.Counter("fiberflow.fibers.created", metrics.WithUnit("1"))
	s.fibersCompleted = cfg.Metrics.Counter("fiberflow.fibers.completed", metrics.WithUnit("1"))
	s.contextSwitches = cfg.Metrics.Counter("fiberflow.context_switches", metrics.WithUnit("1"))
	s.readyDepth = cfg.Metrics.UpDownCounter("fiberflow.ready_depth", metrics.WithUnit("1"))

	s.lifecycle = newLifecycleCoordinator(
		func() { s.cancelReady() },
		func() { s.drainPending() },
	)

	return s
}

// enqueueNew admits a newly created fiber to the ready queue, reporting
// false if the scheduler is already closed (in which case the fiber must
// not be started at all).
func (s *FiberScheduler) enqueueNew(fb *Fiber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.ready = append(s.ready, fb)
	s.readyDepth.Add(1)
	s.fibersCreated.Add(1)
	return true
}

// enqueueReady re-admits a Waiting fiber to the ready queue. It is a no-op
// for a fiber that isn't Waiting, which is what makes it safe for Await's
// listener to call unconditionally even when the future it's watching
// settles synchronously (in which case the fiber never left Running). If
// the scheduler has already been closed, the fiber is rejected and retired
// instead of being re-admitted to a ready queue that Dispatch will never
// drain again.
func (s *FiberScheduler) enqueueReady(fb *Fiber) {
	s.mu.Lock()
	if fb.State() != Waiting {
		s.mu.Unlock()
		return
	}
	if s.closed {
		s.waiting--
		s.mu.Unlock()
		s.retire(fb)
		return
	}
	fb.setState(Ready)
	s.waiting--
	s.ready = append(s.ready, fb)
	s.readyDepth.Add(1)
	s.mu.Unlock()
}

// retire rejects fb's result with ErrSchedulerClosed, releases its stack,
// and marks it Exited. Used to settle fibers the scheduler will never
// dispatch again, instead of leaving their Result future pending forever.
// fb's own goroutine stays parked on resumeCh — retire never signals it,
// since doing so would run entryFn (or the remainder of an Await) outside
// Dispatch's one-fiber-at-a-time guarantee. It exits once the process does.
func (s *FiberScheduler) retire(fb *Fiber) {
	fb.setState(Exited)
	s.stacks.Put(fb.stack)
	s.metricsOnExit()
	fb.result.Reject(ErrSchedulerClosed)
}

// drainPending retires every fiber still sitting in the ready queue at
// Close time. Fibers already Waiting settle individually, as their awaited
// future fires and enqueueReady observes s.closed; this only has to deal
// with the ones that were Ready but never got a Dispatch turn.
func (s *FiberScheduler) drainPending() {
	s.mu.Lock()
	stranded := s.ready
	s.ready = nil
	s.readyDepth.Add(-int64(len(stranded)))
	s.mu.Unlock()

	for _, fb := range stranded {
		s.retire(fb)
	}
}

// onWait records that fb is about to suspend on a future, so Pending keeps
// counting it even while it sits outside both the ready queue and the
// current slot.
func (s *FiberScheduler) onWait() {
	s.mu.Lock()
	s.waiting++
	s.mu.Unlock()
}

func (s *FiberScheduler) metricsOnExit() {
	s.fibersCompleted.Add(1)
}

func (s *FiberScheduler) cancelReady() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Dispatch runs Ready fibers in FIFO order on the calling goroutine, one at
// a time, until either the ready queue is empty or DispatchBudget fibers
// have run (whichever comes first — a budget of 0 means drain the whole
// queue). It returns how many fibers it ran. Call it again, e.g. from a
// host event loop tick, to keep making progress on fibers that are
// Waiting on futures settled outside the scheduler.
func (s *FiberScheduler) Dispatch() int {
	ran := 0
	for {
		if s.cfg.DispatchBudget > 0 && uint(ran) >= s.cfg.DispatchBudget {
			return ran
		}

		s.mu.Lock()
		if s.closed || len(s.ready) == 0 {
			s.mu.Unlock()
			return ran
		}
		fb := s.ready[0]
		s.ready = s.ready[1:]
		s.current = fb
		s.readyDepth.Add(-1)
		s.mu.Unlock()

		fb.setState(Running)
		s.contextSwitches.Add(1)
		fb.resumeCh <- struct{}{}
		<-fb.yieldCh
		ran++

		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
	}
}

// Pending reports how many fibers are currently Ready or Waiting on this
// scheduler (i.e. not yet Exited).
func (s *FiberScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.ready) + s.waiting
	if s.current != nil {
		n++
	}
	return n
}

// Close stops the scheduler from admitting new fibers or dispatching
// further work. It is idempotent and safe for concurrent calls.
func (s *FiberScheduler) Close() {
	s.lifecycle.Close()
}
