package fiberflow

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// migrateMu serializes cross-scheduler migrations. Migration is rare
// compared to dispatch, so a single package-level lock is simpler than
// pointer-ordered per-scheduler locking and never sits on the hot path.
var migrateMu sync.Mutex

// Fiber is a cooperatively scheduled unit of work: a goroutine whose
// execution is gated by a pair of handoff channels so that it only ever
// runs while its FiberScheduler has handed it control, and yields that
// control back — via Await — instead of blocking an OS thread.
type Fiber struct {
	id        uint64
	scheduler *FiberScheduler
	stack     *Stack
	entryFn   func(*Fiber) (interface{}, error)
	result    *Future[interface{}]

	state int32 // FiberState, accessed atomically

	resumeCh chan struct{} // scheduler -> fiber: you may run
	yieldCh  chan struct{} // fiber -> scheduler: I've yielded or exited
}

// NewFiber creates a fiber bound to sched, entering the Ready queue
// immediately. entry receives the fiber itself so it can call Await on
// futures it depends on. entry's return value resolves the fiber's Result
// future; a returned error, or a panic inside entry, rejects it instead —
// a panic is tagged with CodePanic.
func NewFiber(sched *FiberScheduler, entry func(fb *Fiber) (interface{}, error)) *Fiber {
	fb := &Fiber{
		id:        atomic.AddUint64(&sched.nextID, 1),
		scheduler: sched,
		stack:     sched.stacks.Get(),
		entryFn:   entry,
		result:    NewPending[interface{}](),
		resumeCh:  make(chan struct{}),
		yieldCh:   make(chan struct{}),
	}
	fb.setState(Ready)
	if !sched.enqueueNew(fb) {
		// Scheduler already closed: never start the goroutine at all, so
		// there's nothing left blocked on resumeCh.
		sched.stacks.Put(fb.stack)
		fb.setState(Exited)
		fb.result.Reject(ErrSchedulerClosed)
		return fb
	}
	go fb.trampoline()
	return fb
}

// ID returns the fiber's scheduler-local identifier, stable for its
// lifetime. Useful for log correlation and ExtractFiberID.
func (fb *Fiber) ID() uint64 { return fb.id }

// State reports the fiber's current position relative to its scheduler's
// queues.
func (fb *Fiber) State() FiberState { return FiberState(atomic.LoadInt32(&fb.state)) }

func (fb *Fiber) setState(s FiberState) { atomic.StoreInt32(&fb.state, int32(s)) }

// Result returns the future that settles once entry returns or panics.
func (fb *Fiber) Result() *Future[interface{}] { return fb.result }

// Scheduler returns the scheduler this fiber currently has affinity with.
func (fb *Fiber) Scheduler() *FiberScheduler { return fb.scheduler }

// trampoline is the body of the goroutine backing a fiber. It blocks on
// resumeCh until the scheduler dispatches it for the first time, runs
// entryFn exactly once, and always signals yieldCh exactly once more on
// the way out so the dispatch loop never blocks forever on a dead fiber.
func (fb *Fiber) trampoline() {
	<-fb.resumeCh

	defer func() {
		if r := recover(); r != nil {
			panicErr := NewTaggedError(DomainFiber, CodePanic, fmt.Sprintf("fiber panicked: %v", r))
			fb.result.Reject(newFiberTaggedError(panicErr, fb.id))
		}
		fb.setState(Exited)
		sched := fb.scheduler
		sched.stacks.Put(fb.stack)
		sched.metricsOnExit()
		fb.yieldCh <- struct{}{}
	}()

	value, err := fb.entryFn(fb)
	if err != nil {
		fb.result.Reject(newFiberTaggedError(err, fb.id))
		return
	}
	fb.result.Resolve(value)
}

// MigrateTo transfers fb's scheduling affinity to dest. A Ready fiber
// moves between ready queues; a Waiting fiber keeps waiting on whatever
// future it's parked on and simply rejoins dest's ready queue once that
// future settles. Migrating the fiber that is currently running on its
// scheduler, or one that has already exited, is an error.
func (fb *Fiber) MigrateTo(dest *FiberScheduler) error {
	if dest == nil {
		return ErrInvalidConfig
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	src := fb.scheduler
	if src == dest {
		return nil
	}

	switch fb.State() {
	case Exited:
		return ErrFiberExited
	case Running:
		return ErrFiberRunning
	}

	src.mu.Lock()
	if src.current == fb {
		src.mu.Unlock()
		return ErrFiberRunning
	}
	for i, q := range src.ready {
		if q == fb {
			src.ready = append(src.ready[:i], src.ready[i+1:]...)
			break
		}
	}
	wasWaiting := fb.State() == Waiting
	if wasWaiting {
		src.waiting--
	}
	src.mu.Unlock()

	fb.scheduler = dest

	if wasWaiting {
		dest.mu.Lock()
		dest.waiting++
		dest.mu.Unlock()
	} else if fb.State() == Ready {
		dest.mu.Lock()
		dest.ready = append(dest.ready, fb)
		dest.mu.Unlock()
	}
	// State Waiting: dest picks fb up later via enqueueReady, called from
	// the listener registered by whatever Await suspended fb — that
	// closure reads fb.scheduler at fire time, which is now dest.
	return nil
}

// Await suspends fb until f settles, without blocking fb's underlying OS
// thread: if f is already settled Await returns immediately, otherwise it
// hands control back to fb's scheduler and is resumed only once f has a
// result.
func Await[T any](fb *Fiber, f *Future[T]) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	resultCh := make(chan outcome, 1)

	f.AddListener(func(value T, err error) {
		resultCh <- outcome{value, err}
		fb.scheduler.enqueueReady(fb)
	})

	select {
	case r := <-resultCh:
		// f was already settled (or settled during AddListener's own
		// call, on this same goroutine) — no suspension needed. fb.state
		// is still Running so the enqueueReady call above was a no-op.
		return r.value, r.err
	default:
	}

	fb.setState(Waiting)
	fb.scheduler.onWait()
	fb.yieldCh <- struct{}{}
	<-fb.resumeCh

	r := <-resultCh
	return r.value, r.err
}
