package fiberflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThen_PropagatesRejection(t *testing.T) {
	src := NewPending[int]()
	out := Then(src, func(v int) (int, error) { return v * 2, nil })

	cause := errors.New("nope")
	src.Reject(cause)

	_, err := out.Wait()
	require.ErrorIs(t, err, cause)
}

func TestCatch_RecoversRejection(t *testing.T) {
	src := NewPending[int]()
	out := Catch(src, func(err error) (int, error) { return -1, nil })

	src.Reject(errors.New("boom"))

	v, err := out.Wait()
	require.NoError(t, err)
	require.Equal(t, -1, v)
}

func TestAll_EmptyResolvesImmediately(t *testing.T) {
	out := All[int](nil)
	v, err := out.Wait()
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestAll_RejectsOnFirstFailure(t *testing.T) {
	f1 := NewPending[int]()
	f2 := NewPending[int]()
	out := All([]*Future[int]{f1, f2})

	f1.Reject(errors.New("f1 failed"))

	_, err := out.Wait()
	require.ErrorIs(t, err, ErrDependencyFailed)
}

func TestAny_ResolvesOnFirstSuccess(t *testing.T) {
	f1 := NewPending[int]()
	f2 := NewPending[int]()
	out := Any([]*Future[int]{f1, f2})

	f2.Resolve(2)

	v, err := out.Wait()
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestAny_RejectsWhenAllFail(t *testing.T) {
	f1 := NewPending[int]()
	f2 := NewPending[int]()
	out := Any([]*Future[int]{f1, f2})

	f1.Reject(errors.New("f1"))
	f2.Reject(errors.New("f2"))

	_, err := out.Wait()
	require.Error(t, err, "expected rejection once every dependency failed")
}

func TestFirst_SettlesWithEarliestOutcome(t *testing.T) {
	f1 := NewPending[int]()
	f2 := NewPending[int]()
	out := First([]*Future[int]{f1, f2})

	f2.Reject(errors.New("fast failure"))

	_, err := out.Wait()
	require.Error(t, err, "expected First to settle with the fast rejection")
}

func TestAllRace_SettlesWithEarliestOutcome(t *testing.T) {
	f1 := NewPending[int]()
	f2 := NewPending[int]()
	out := AllRace([]*Future[int]{f1, f2})

	f1.Resolve(9)

	v, err := out.Wait()
	require.NoError(t, err)
	require.Equal(t, 9, v)
}

func TestAllRace_EmptyRejectsImmediately(t *testing.T) {
	out := AllRace[int](nil)
	require.Equal(t, Rejected, out.Status(), "racing nothing should fail fast rather than hang")

	_, err := out.Wait()
	require.ErrorIs(t, err, ErrDependencyFailed)
}
