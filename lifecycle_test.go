package fiberflow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLifecycleCoordinator_RunsCancelThenDrain(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(step string) {
		mu.Lock()
		order = append(order, step)
		mu.Unlock()
	}

	lc := newLifecycleCoordinator(
		func() { record("cancel") },
		func() { record("drain") },
	)

	lc.Close()

	require.Equal(t, []string{"cancel", "drain"}, order)
}

func TestLifecycleCoordinator_Idempotent_ConcurrentClose(t *testing.T) {
	var calls int32Counter
	lc := newLifecycleCoordinator(
		func() { calls.inc() },
		func() { calls.inc() },
	)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() { defer wg.Done(); lc.Close() }()
	}
	wg.Wait()

	require.Equal(t, 2, calls.get(), "cancel and drain must each run exactly once regardless of concurrent Close calls")
}

func TestLifecycleCoordinator_NilHooksAreSafe(t *testing.T) {
	lc := newLifecycleCoordinator(nil, nil)
	require.NotPanics(t, func() { lc.Close() })
}

// int32Counter is a tiny mutex-guarded counter, local to this test file, so
// the concurrent-Close test doesn't need to reach for atomics just to count
// two callbacks.
type int32Counter struct {
	mu sync.Mutex
	n  int
}

func (c *int32Counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *int32Counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
