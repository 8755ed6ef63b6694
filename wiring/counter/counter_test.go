package counter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardCounterBasicOperations(t *testing.T) {
	c := NewStandardObjectCounter("test")

	require.Equal(t, int64(0), c.Count())

	c.OnRamp()
	c.OnRamp()
	require.Equal(t, int64(2), c.Count())

	c.OffRamp()
	require.Equal(t, int64(1), c.Count())

	require.True(t, c.AttemptOnRamp())
	c.ForceOnRamp()
	require.Equal(t, int64(3), c.Count())

	c.OffRamp()
	c.OffRamp()
	c.OffRamp()
	require.Equal(t, int64(0), c.Count())
}

func TestStandardCounterOffRampBelowZeroPanics(t *testing.T) {
	c := NewStandardObjectCounter("test")
	require.Panics(t, func() { c.OffRamp() })
}

func TestStandardCounterWaitUntilEmpty(t *testing.T) {
	c := NewStandardObjectCounter("test")
	for i := 0; i < 10; i++ {
		c.OnRamp()
	}

	done := make(chan struct{})
	go func() {
		c.WaitUntilEmpty()
		close(done)
	}()

	// WaitUntilEmpty must not return while the count is nonzero.
	select {
	case <-done:
		t.Fatal("WaitUntilEmpty returned with nonzero count")
	case <-time.After(20 * time.Millisecond):
	}

	for i := 0; i < 10; i++ {
		c.OffRamp()
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitUntilEmpty did not return after count reached zero")
	}
}

func TestBackpressureCounterParksAtCapacity(t *testing.T) {
	c := NewBackpressureObjectCounter("test", 2, time.Millisecond)

	c.OnRamp()
	c.OnRamp()
	require.Equal(t, int64(2), c.Count())
	require.False(t, c.AttemptOnRamp())

	var parkedDone atomic.Bool
	started := make(chan struct{})
	go func() {
		close(started)
		c.OnRamp()
		parkedDone.Store(true)
	}()

	<-started
	time.Sleep(20 * time.Millisecond)
	require.False(t, parkedDone.Load(), "parked on-ramp proceeded at capacity")

	// One off-ramp releases exactly one parked submitter.
	c.OffRamp()
	require.Eventually(t, parkedDone.Load, time.Second, time.Millisecond)
	require.Equal(t, int64(2), c.Count())
}

func TestBackpressureCounterForceOnRampBypassesCapacity(t *testing.T) {
	c := NewBackpressureObjectCounter("test", 1, time.Millisecond)

	c.OnRamp()
	c.ForceOnRamp()
	c.ForceOnRamp()
	require.Equal(t, int64(3), c.Count())
}

func TestBackpressureCounterInterruptableOnRampCancellation(t *testing.T) {
	c := NewBackpressureObjectCounter("test", 1, time.Millisecond)
	c.OnRamp()

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.InterruptableOnRamp(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled on-ramp did not return")
	}

	// The cancelled on-ramp must not have incremented the count.
	require.Equal(t, int64(1), c.Count())
}

func TestBackpressureCounterConcurrentOnOffRamps(t *testing.T) {
	c := NewBackpressureObjectCounter("test", 16, time.Millisecond)

	const workers = 8
	const perWorker = 500

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				c.OnRamp()
				c.OffRamp()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(0), c.Count())
}

func TestBackpressureCounterInvalidCapacityPanics(t *testing.T) {
	require.Panics(t, func() { NewBackpressureObjectCounter("test", 0, time.Millisecond) })
}

func TestNoOpCounter(t *testing.T) {
	c := NewNoOpObjectCounter()

	c.OnRamp()
	c.ForceOnRamp()
	require.True(t, c.AttemptOnRamp())
	require.NoError(t, c.InterruptableOnRamp(context.Background()))
	c.OffRamp()
	require.Equal(t, int64(0), c.Count())
	c.WaitUntilEmpty()
}
