package fiberflow

import "sync"

// Then returns a new Future that resolves to fn's result once f resolves.
// If f rejects, the returned future rejects without calling fn, with a
// TaggedError wrapping f's cause under CodeDependencyFailed. If fn itself
// returns an error, the returned future rejects with that error.
func Then[T, R any](f *Future[T], fn func(T) (R, error)) *Future[R] {
	out := NewPending[R]()
	f.AddListener(func(value T, err error) {
		if err != nil {
			out.Reject(WrapTaggedError(DomainFuture, CodeDependencyFailed, "upstream future rejected", err))
			return
		}
		result, ferr := fn(value)
		if ferr != nil {
			out.Reject(ferr)
			return
		}
		out.Resolve(result)
	})
	return out
}

// Catch returns a new Future that resolves to fn's recovery value if f
// rejects. If f resolves, the returned future resolves with the same
// value without calling fn. If fn itself returns an error, the returned
// future rejects with that error.
func Catch[T any](f *Future[T], fn func(error) (T, error)) *Future[T] {
	out := NewPending[T]()
	f.AddListener(func(value T, err error) {
		if err == nil {
			out.Resolve(value)
			return
		}
		recovered, rerr := fn(err)
		if rerr != nil {
			out.Reject(rerr)
			return
		}
		out.Resolve(recovered)
	})
	return out
}

// All returns a Future that resolves to the slice of every input future's
// value, in input order, once all of them have resolved. It rejects as
// soon as any input future rejects, with a TaggedError wrapping that
// future's cause under CodeDependencyFailed — the other inputs are left to
// settle on their own but no longer observed.
func All[T any](fs []*Future[T]) *Future[[]T] {
	out := NewPending[[]T]()
	if len(fs) == 0 {
		out.Resolve(nil)
		return out
	}

	var mu sync.Mutex
	values := make([]T, len(fs))
	remaining := len(fs)

	for i, f := range fs {
		i := i
		f.AddListener(func(value T, err error) {
			if err != nil {
				out.Reject(WrapTaggedError(DomainFuture, CodeDependencyFailed, "dependency in All rejected", err))
				return
			}
			mu.Lock()
			values[i] = value
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				out.Resolve(values)
			}
		})
	}
	return out
}

// Any returns a Future that resolves with the value of whichever input
// future resolves first. It rejects only once every input has rejected,
// with a TaggedError wrapping the cause of the last one to do so under
// CodeDependencyFailed.
func Any[T any](fs []*Future[T]) *Future[T] {
	out := NewPending[T]()
	if len(fs) == 0 {
		out.Reject(NewTaggedError(DomainFuture, CodeDependencyFailed, "Any called with no futures"))
		return out
	}

	var mu sync.Mutex
	remaining := len(fs)

	for _, f := range fs {
		f.AddListener(func(value T, err error) {
			if err == nil {
				out.Resolve(value)
				return
			}
			mu.Lock()
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				out.Reject(WrapTaggedError(DomainFuture, CodeDependencyFailed, "every dependency in Any rejected", err))
			}
		})
	}
	return out
}

// First returns a Future that settles — resolved or rejected — the same
// way whichever input future settles first, regardless of outcome. Racing
// an empty slice returns a Future that is never settled: there's nothing
// to wait on, so there's nothing to report either.
func First[T any](fs []*Future[T]) *Future[T] {
	out := NewPending[T]()
	for _, f := range fs {
		f.AddListener(func(value T, err error) {
			if err != nil {
				out.Reject(err)
				return
			}
			out.Resolve(value)
		})
	}
	return out
}

// AllRace settles the same way as whichever input future is first to
// settle — identical to First for a non-empty input. Unlike First, racing
// an empty slice rejects immediately instead of leaving the returned
// future pending forever: with nothing entered in the race there's no
// result to eventually produce, and the other combinators in this family
// (Any, All) all fail fast on an empty input rather than hang.
func AllRace[T any](fs []*Future[T]) *Future[T] {
	if len(fs) == 0 {
		return NewRejected[T](NewTaggedError(DomainFuture, CodeDependencyFailed, "AllRace called with no futures"))
	}
	return First(fs)
}
