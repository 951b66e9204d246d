package fiberflow

import "sync"

// listener is a callback registered against a Future, invoked exactly once
// after the future transitions out of Pending.
type listener[T any] func(value T, err error)

// Future is a single-assignment container for the result of work that
// hasn't completed yet. It is safe for concurrent use: many goroutines may
// read it or register listeners while at most one completes it.
//
// The zero value is not usable; construct one with NewPending, NewResolved,
// or NewRejected.
type Future[T any] struct {
	mu        sync.Mutex
	status    Status
	value     T
	err       error
	listeners []listener[T]
}

// NewPending returns a Future with no result yet.
func NewPending[T any]() *Future[T] {
	return &Future[T]{status: Pending}
}

// NewResolved returns a Future already Resolved with value.
func NewResolved[T any](value T) *Future[T] {
	return &Future[T]{status: Resolved, value: value}
}

// NewRejected returns a Future already Rejected with err. err must not be
// nil.
func NewRejected[T any](err error) *Future[T] {
	if err == nil {
		err = ErrDependencyFailed
	}
	return &Future[T]{status: Rejected, err: err}
}

// Status reports the Future's current position in its state machine.
func (f *Future[T]) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Value returns the resolved value. It is only meaningful once Status() is
// Resolved; for a Pending or Rejected future it returns the zero value.
func (f *Future[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Err returns the rejection cause. It is only meaningful once Status() is
// Rejected; for a Pending or Resolved future it returns nil.
func (f *Future[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Resolve transitions the future to Resolved with value. It is a no-op if
// the future is no longer Pending — the state machine is monotone, so the
// first call to Resolve or Reject wins and reports ok=true; every
// subsequent call reports ok=false.
func (f *Future[T]) Resolve(value T) bool {
	return f.complete(value, nil, Resolved)
}

// Reject transitions the future to Rejected with err. err must not be nil;
// a nil err is replaced with ErrDependencyFailed so a rejected future never
// carries a nil Err(). Like Resolve, only the first caller wins.
func (f *Future[T]) Reject(err error) bool {
	if err == nil {
		err = ErrDependencyFailed
	}
	var zero T
	return f.complete(zero, err, Rejected)
}

func (f *Future[T]) complete(value T, err error, status Status) bool {
	f.mu.Lock()
	if f.status != Pending {
		f.mu.Unlock()
		return false
	}
	f.status = status
	f.value = value
	f.err = err
	// Detach the listener list before invoking it: a listener callback may
	// itself call AddListener on this same future (e.g. a combinator
	// chaining onto its own dependency), and invoking while still holding
	// f.mu or still pointing at f.listeners would deadlock or race against
	// that re-entrant registration.
	ls := f.listeners
	f.listeners = nil
	f.mu.Unlock()

	for _, l := range ls {
		l(value, err)
	}
	return true
}

// AddListener registers fn to run once the future leaves Pending. If the
// future has already completed, fn runs synchronously on the calling
// goroutine before AddListener returns. Listeners registered while still
// Pending run in insertion order, synchronously on whichever goroutine
// completes the future.
func (f *Future[T]) AddListener(fn func(value T, err error)) {
	f.mu.Lock()
	if f.status == Pending {
		f.listeners = append(f.listeners, fn)
		f.mu.Unlock()
		return
	}
	value, err, _ := f.value, f.err, f.status
	f.mu.Unlock()
	fn(value, err)
}

// Wait blocks the calling goroutine until the future completes and returns
// its terminal value/error. It is meant for non-fiber callers (tests,
// bridging code); fiber bodies should use Await(fb, f) instead so that
// waiting suspends the fiber rather than blocking an OS thread.
func (f *Future[T]) Wait() (T, error) {
	done := make(chan struct{})
	var value T
	var err error
	f.AddListener(func(v T, e error) {
		value, err = v, e
		close(done)
	})
	<-done
	return value, err
}
