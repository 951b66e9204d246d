// Package fiberflow is a small structured-concurrency runtime built from
// three co-designed pieces:
//
//   - Future[T]: the eventual result of a computation — pending, then
//     resolved with a value or rejected with an error, exactly once.
//   - Fiber: a cooperatively scheduled, goroutine-backed coroutine that
//     suspends at explicit Await points and resumes when the Future it is
//     waiting on completes.
//   - Channel[T]: a bounded FIFO that pairs senders and receivers of
//     futures with strict ordering and capacity-based backpressure.
//
// A FiberScheduler drives a set of fibers from a single dispatch goroutine:
// fibers never run concurrently with each other on the same scheduler, and
// external completions (timeouts, AIO, or any other Future source) can
// safely resolve futures and reschedule fibers from any goroutine.
//
// # Constructors
//
//   - NewScheduler(opts ...Option): builds a FiberScheduler. Defaults to a
//     dynamic stack pool; WithFixedStackPool caps concurrently live fiber
//     stacks.
//   - NewFiber(scheduler, entry): allocates a Fiber bound to scheduler and
//     places it on that scheduler's ready queue immediately. MigrateTo
//     transfers a Ready or Waiting fiber's affinity to a different
//     scheduler afterward.
//   - NewChannel[T](capacity): a bounded channel of futures of type T.
//
// # Defaults
//
// Unless overridden, a new FiberScheduler uses:
//   - a dynamic stack pool (grows/shrinks via sync.Pool)
//   - a default stack size of 64KiB per fiber
//   - a no-op metrics provider
//   - an unbounded per-dispatch budget of fibers (one full ready-queue drain)
//
// # Errors
//
// Rejections the core produces itself carry a *TaggedError (Domain, Code,
// Message), possibly wrapping an underlying cause. An error returned by a
// Then/Catch callback is passed through unchanged, and a fiber entry's error
// only gains the fiber's ID (see ExtractFiberID). Programmer errors, such as
// an illegal MigrateTo, are returned directly as plain sentinel errors. See
// errors.go for the sentinel codes used by the core (CHANNEL_CLOSED,
// TIMED_OUT, DEPENDENCY_FAILED, PANIC).
package fiberflow
