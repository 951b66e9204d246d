package fiberflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChain_ForwardsResolve(t *testing.T) {
	src := NewPending[int]()
	dst := NewPending[int]()
	require.NoError(t, Chain(src, dst))

	src.Resolve(9)
	v, err := dst.Wait()
	require.NoError(t, err)
	require.Equal(t, 9, v)
}

func TestChain_ForwardsReject(t *testing.T) {
	src := NewPending[int]()
	dst := NewPending[int]()
	require.NoError(t, Chain(src, dst))

	cause := errors.New("upstream broke")
	src.Reject(cause)

	_, err := dst.Wait()
	require.ErrorIs(t, err, ErrDependencyFailed)
	require.ErrorIs(t, err, cause)
}

func TestChain_RejectsSelfCycle(t *testing.T) {
	f := NewPending[int]()
	require.ErrorIs(t, Chain(f, f), ErrCyclicChain)
}
