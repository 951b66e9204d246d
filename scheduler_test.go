package fiberflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/fiberflow/metrics"
)

func TestScheduler_DispatchRunsInFIFOOrder(t *testing.T) {
	sched := NewScheduler()
	var order []int

	for i := 0; i < 3; i++ {
		i := i
		NewFiber(sched, func(self *Fiber) (interface{}, error) {
			order = append(order, i)
			return nil, nil
		})
	}

	sched.Dispatch()

	require.Equal(t, []int{0, 1, 2}, order)
}

func TestScheduler_DispatchBudget(t *testing.T) {
	sched := NewScheduler(WithDispatchBudget(1))

	for i := 0; i < 3; i++ {
		NewFiber(sched, func(self *Fiber) (interface{}, error) { return nil, nil })
	}

	ran := sched.Dispatch()
	require.Equal(t, 1, ran, "expected Dispatch to honor budget of 1")
	require.Equal(t, 2, sched.Pending())

	sched.Dispatch()
	sched.Dispatch()
	require.Equal(t, 0, sched.Pending())
}

func TestScheduler_FixedStackPoolOption(t *testing.T) {
	sched := NewScheduler(WithFixedStackPool(2), WithStackSize(128))

	// A fixed pool's Get blocks once capacity stacks are checked out, so
	// fibers here are created and drained in capacity-sized waves rather
	// than all up front.
	for wave := 0; wave < 3; wave++ {
		for i := 0; i < 2; i++ {
			NewFiber(sched, func(self *Fiber) (interface{}, error) { return nil, nil })
		}
		sched.Dispatch()
	}

	require.Equal(t, 0, sched.Pending())
}

func TestScheduler_ConflictingPoolOptionsPanic(t *testing.T) {
	require.Panics(t, func() {
		NewScheduler(WithFixedStackPool(1), WithDynamicStackPool())
	})
}

func TestScheduler_CloseRejectsNewFibers(t *testing.T) {
	sched := NewScheduler()
	sched.Close()

	fb := NewFiber(sched, func(self *Fiber) (interface{}, error) { return 1, nil })
	require.Equal(t, Exited, fb.State())

	_, err := fb.Result().Wait()
	require.Error(t, err)
}

// TestScheduler_CloseDrainsReadyFibers confirms Close rejects fibers that
// were admitted before the close but never got a Dispatch turn, instead of
// stranding their Result future pending forever.
func TestScheduler_CloseDrainsReadyFibers(t *testing.T) {
	sched := NewScheduler()

	fb := NewFiber(sched, func(self *Fiber) (interface{}, error) { return 1, nil })
	require.Equal(t, Ready, fb.State())

	sched.Close()

	require.Equal(t, Exited, fb.State())
	_, err := fb.Result().Wait()
	require.ErrorIs(t, err, ErrSchedulerClosed)
}

// TestScheduler_CloseRejectsWaitingFiberAfterLateSettle confirms a fiber
// parked on Await when Close happens doesn't get silently re-admitted to a
// ready queue Dispatch will never drain again: once its awaited future
// settles, enqueueReady must retire it instead.
func TestScheduler_CloseRejectsWaitingFiberAfterLateSettle(t *testing.T) {
	sched := NewScheduler()
	pending := NewPending[int]()

	fb := NewFiber(sched, func(self *Fiber) (interface{}, error) {
		return Await(self, pending)
	})

	sched.Dispatch() // runs fb to its Await, parking it as Waiting
	require.Equal(t, Waiting, fb.State())

	sched.Close()
	require.Equal(t, Waiting, fb.State(), "fiber stays Waiting until its awaited future actually settles")

	pending.Resolve(7)

	_, err := fb.Result().Wait()
	require.ErrorIs(t, err, ErrSchedulerClosed, "expected the late-settling fiber to be retired, not re-dispatched")
}

// TestScheduler_MetricsTrackCreatedCompletedAndContextSwitches confirms the
// scheduler's instrumentation is wired to real counters, not just plumbed
// through to a no-op, when a BasicProvider is supplied.
func TestScheduler_MetricsTrackCreatedCompletedAndContextSwitches(t *testing.T) {
	provider := metrics.NewBasicProvider()
	sched := NewScheduler(WithMetrics(provider))

	for i := 0; i < 3; i++ {
		NewFiber(sched, func(self *Fiber) (interface{}, error) { return nil, nil })
	}
	sched.Dispatch()

	created, ok := provider.CounterValue("fiberflow.fibers.created")
	require.True(t, ok)
	require.Equal(t, int64(3), created)

	completed, ok := provider.CounterValue("fiberflow.fibers.completed")
	require.True(t, ok)
	require.Equal(t, int64(3), completed)

	switches, ok := provider.CounterValue("fiberflow.context_switches")
	require.True(t, ok)
	require.Equal(t, int64(3), switches)
}
