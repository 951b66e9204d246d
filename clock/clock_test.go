package clock

import (
	"testing"
	"time"

	"github.com/kestrelflow/fiberflow"
	"github.com/stretchr/testify/require"
)

func TestNewDuration_RejectsAfterElapsed(t *testing.T) {
	f := NewDuration(5 * time.Millisecond)
	_, err := f.Wait()
	require.ErrorIs(t, err, fiberflow.ErrTimedOut)
}

func TestNewDeadline_RejectsAtWallClockTime(t *testing.T) {
	dl := NewDeadline(time.Now().Add(5 * time.Millisecond))
	_, err := dl.Future().Wait()
	require.ErrorIs(t, err, fiberflow.ErrTimedOut)
}

func TestDeadline_PostponeUntilDelaysFiring(t *testing.T) {
	dl := NewDeadline(time.Now().Add(5 * time.Millisecond))
	dl.PostponeUntil(time.Now().Add(50 * time.Millisecond))

	<-time.After(15 * time.Millisecond)
	require.Equal(t, fiberflow.Pending, dl.Future().Status(), "postponed deadline must not have fired yet")

	_, err := dl.Future().Wait()
	require.ErrorIs(t, err, fiberflow.ErrTimedOut)
}

func TestDeadline_PostponeUntilNoopOnceSettled(t *testing.T) {
	dl := NewDeadline(time.Now().Add(1 * time.Millisecond))
	_, err := dl.Future().Wait()
	require.ErrorIs(t, err, fiberflow.ErrTimedOut)

	dl.PostponeUntil(time.Now().Add(time.Hour))
	require.Equal(t, fiberflow.Rejected, dl.Future().Status(), "postponing a settled deadline must stay a no-op")
}

func TestWithTimeout_ResolvesWhenFasterThanDeadline(t *testing.T) {
	promise, future := fiberflow.NewPromise[int]()
	promise.Resolve(7)

	out := WithTimeout(future, 20*time.Millisecond)
	v, err := out.Wait()
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestWithTimeout_RejectsOnceDeadlineElapses(t *testing.T) {
	_, future := fiberflow.NewPromise[int]()

	out := WithTimeout(future, 5*time.Millisecond)
	_, err := out.Wait()
	require.ErrorIs(t, err, fiberflow.ErrTimedOut)
}
