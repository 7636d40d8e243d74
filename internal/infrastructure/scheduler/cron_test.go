package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextHonoursLocation(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	s := NewCronScheduler("0 9-18 * * *", loc)

	next, err := s.Next(time.Date(2025, 3, 3, 20, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 4, 9, 0, 0, 0, loc).Equal(next), next)

	next, err = s.Next(time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 3, 10, 0, 0, 0, loc).Equal(next), next)
}

func TestStartRejectsBadSpec(t *testing.T) {
	t.Parallel()

	err := NewCronScheduler("every now and then", time.UTC).Start(context.Background(), func(time.Time) {})
	require.Error(t, err)
}

func TestRunImmediatelyFiresOnStart(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 1)
	s := NewCronScheduler("@every 1h", time.UTC, RunImmediately())

	require.NoError(t, s.Start(context.Background(), func(ts time.Time) { fired <- ts }))
	defer s.Stop(context.Background())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@every 1h", time.UTC)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestSharedRunLockSerializesJobs(t *testing.T) {
	t.Parallel()

	var (
		lock    sync.Mutex
		running atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	job := func(time.Time) {
		defer wg.Done()
		if running.Add(1) > 1 {
			overlap.Store(true)
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
	}

	wg.Add(2)
	posting := NewCronScheduler("@every 1h", time.UTC, RunImmediately(), WithRunLock(&lock))
	discovery := NewCronScheduler("@every 1h", time.UTC, RunImmediately(), WithRunLock(&lock))
	require.NoError(t, posting.Start(context.Background(), job))
	require.NoError(t, discovery.Start(context.Background(), job))
	defer posting.Stop(context.Background())
	defer discovery.Stop(context.Background())

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not run")
	}
	assert.False(t, overlap.Load())
}
