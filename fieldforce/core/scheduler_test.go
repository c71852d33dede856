package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler(t *testing.T) {
	t.Run("Immediate first run", func(t *testing.T) {
		s := NewScheduler(quietLogger)
		defer s.Stop()

		var runs atomic.Int32
		require.NoError(t, s.Start("job", time.Hour, true, func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))
		assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	})

	t.Run("Runs on the interval", func(t *testing.T) {
		s := NewScheduler(quietLogger)
		defer s.Stop()

		var runs atomic.Int32
		require.NoError(t, s.Start("job", 5*time.Millisecond, false, func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))
		assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		s := NewScheduler(quietLogger)
		defer s.Stop()

		noop := func(ctx context.Context) error { return nil }
		require.NoError(t, s.Start("job", time.Hour, false, noop))
		assert.ErrorIs(t, s.Start("job", time.Hour, false, noop), ErrJobExists)
		assert.Error(t, s.Start("other", 0, false, noop))
		assert.Equal(t, []string{"job"}, s.Names())
	})

	t.Run("Tick runs synchronously", func(t *testing.T) {
		s := NewScheduler(quietLogger)
		defer s.Stop()

		boom := errors.New("boom")
		var runs atomic.Int32
		require.NoError(t, s.Start("job", time.Hour, false, func(ctx context.Context) error {
			runs.Add(1)
			return boom
		}))
		assert.ErrorIs(t, s.Tick("job"), boom)
		assert.Equal(t, int32(1), runs.Load())
		assert.ErrorIs(t, s.Tick("missing"), ErrJobNotFound)
	})

	t.Run("Cancel stops future runs", func(t *testing.T) {
		s := NewScheduler(quietLogger)
		defer s.Stop()

		var runs atomic.Int32
		require.NoError(t, s.Start("job", 2*time.Millisecond, true, func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))
		require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)

		assert.True(t, s.Cancel("job"))
		assert.False(t, s.Cancel("job"))
		assert.False(t, s.Running("job"))

		// a tick may already have been in progress
		time.Sleep(10 * time.Millisecond)
		settled := runs.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, settled, runs.Load())
	})

	t.Run("Runs never overlap", func(t *testing.T) {
		s := NewScheduler(quietLogger)
		defer s.Stop()

		var inFlight, overlaps, runs atomic.Int32
		require.NoError(t, s.Start("job", time.Millisecond, true, func(ctx context.Context) error {
			if inFlight.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(3 * time.Millisecond)
			inFlight.Add(-1)
			runs.Add(1)
			return nil
		}))
		for range 5 {
			_ = s.Tick("job")
		}
		require.Eventually(t, func() bool { return runs.Load() >= 10 }, time.Second, time.Millisecond)
		assert.Zero(t, overlaps.Load())
	})

	t.Run("Stop waits and refuses new jobs", func(t *testing.T) {
		s := NewScheduler(quietLogger)

		var finished atomic.Bool
		started := make(chan struct{})
		require.NoError(t, s.Start("job", time.Hour, true, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			finished.Store(true)
			return ctx.Err()
		}))
		<-started

		s.Stop()
		assert.True(t, finished.Load())
		assert.Empty(t, s.Names())
		assert.ErrorIs(t, s.Start("late", time.Hour, false, func(ctx context.Context) error { return nil }), ErrSchedulerStopped)
		s.Stop()
	})
}
