package fiberflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuture_ResolveOnce(t *testing.T) {
	f := NewPending[int]()

	require.True(t, f.Resolve(1), "first Resolve should win")
	require.False(t, f.Resolve(2), "second Resolve should not win")
	require.Equal(t, Resolved, f.Status())
	require.Equal(t, 1, f.Value())
}

func TestFuture_RejectWinsOverLaterResolve(t *testing.T) {
	f := NewPending[int]()
	sentinel := errors.New("boom")

	require.True(t, f.Reject(sentinel), "Reject should win")
	require.False(t, f.Resolve(1), "Resolve after Reject should not win")
	require.ErrorIs(t, f.Err(), sentinel)
}

func TestFuture_AddListener_SynchronousWhenAlreadySettled(t *testing.T) {
	f := NewResolved(7)
	called := false
	f.AddListener(func(v int, err error) {
		called = true
		require.Equal(t, 7, v)
		require.NoError(t, err)
	})
	require.True(t, called, "listener on an already-settled future must run synchronously")
}

func TestFuture_AddListener_OrderPreserved(t *testing.T) {
	f := NewPending[int]()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		f.AddListener(func(int, error) { order = append(order, i) })
	}
	f.Resolve(0)
	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFuture_Wait(t *testing.T) {
	promise, future := NewPromise[string]()
	go promise.Resolve("done")
	v, err := future.Wait()
	require.NoError(t, err)
	require.Equal(t, "done", v)
}
