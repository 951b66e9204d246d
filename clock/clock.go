// Package clock is the timeout facade fiberflow's external interfaces
// specify as a collaborator rather than a component of the scheduler
// itself: a Fiber awaits a Future that a timer resolves or rejects on its
// own schedule, same as any other producer.
package clock

import (
	"sync"
	"time"

	"github.com/kestrelflow/fiberflow"
)

// Deadline pairs a timeout Future with the *time.Timer backing it, so a
// caller holding the handle can re-arm it before it fires. NewDuration and
// its sugar (NewMsec/NewUsec/NewSeconds) return a bare Future instead: a
// relative, fire-and-forget timeout has nothing sensible to postpone to.
type Deadline struct {
	future *fiberflow.Future[struct{}]

	mu    sync.Mutex
	timer *time.Timer
}

// NewDeadline returns a Deadline whose Future rejects with
// fiberflow.ErrTimedOut once wall-clock time t is reached. Callers race the
// Future against whatever they actually care about, typically with
// fiberflow.First.
func NewDeadline(t time.Time) *Deadline {
	f := fiberflow.NewPending[struct{}]()
	dl := &Deadline{future: f}
	dl.timer = time.AfterFunc(time.Until(t), func() {
		f.Reject(fiberflow.ErrTimedOut)
	})
	return dl
}

// Future returns the timeout future.
func (dl *Deadline) Future() *fiberflow.Future[struct{}] { return dl.future }

// PostponeUntil re-arms a still-pending deadline to fire at t instead of
// its original deadline. Re-arming a deadline whose Future has already
// settled — by firing, or by whatever it was raced against settling first
// — is a no-op; a terminal future can't un-terminal itself.
func (dl *Deadline) PostponeUntil(t time.Time) {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.future.Status() != fiberflow.Pending {
		return
	}
	dl.timer.Reset(time.Until(t))
}

// NewDuration returns a future that rejects with fiberflow.ErrTimedOut
// after d elapses. A non-positive d fires immediately.
func NewDuration(d time.Duration) *fiberflow.Future[struct{}] {
	f := fiberflow.NewPending[struct{}]()
	timer := time.AfterFunc(d, func() {
		f.Reject(fiberflow.ErrTimedOut)
	})
	// If the caller's own future settles first, the timer is just wasted
	// work; nothing references it once f is already terminal, so let the
	// runtime collect it rather than tracking a cancellation explicitly.
	_ = timer
	return f
}

// NewMsec is NewDuration expressed in milliseconds.
func NewMsec(msec int64) *fiberflow.Future[struct{}] {
	return NewDuration(time.Duration(msec) * time.Millisecond)
}

// NewUsec is NewDuration expressed in microseconds.
func NewUsec(usec int64) *fiberflow.Future[struct{}] {
	return NewDuration(time.Duration(usec) * time.Microsecond)
}

// NewSeconds is NewDuration expressed in whole seconds.
func NewSeconds(sec int64) *fiberflow.Future[struct{}] {
	return NewDuration(time.Duration(sec) * time.Second)
}

// WithTimeout races f against a deadline of d: it resolves/rejects with
// whichever of the two settles first, so Await(fb, WithTimeout(f, d)) is
// the idiomatic way to bound how long a fiber waits on any future.
func WithTimeout[T any](f *fiberflow.Future[T], d time.Duration) *fiberflow.Future[T] {
	timeout := NewDuration(d)
	out := fiberflow.NewPending[T]()
	f.AddListener(func(v T, err error) {
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(v)
	})
	timeout.AddListener(func(_ struct{}, err error) {
		if err != nil {
			out.Reject(err)
		}
	})
	return out
}
