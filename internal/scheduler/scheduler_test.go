package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// slowReminderStub blocks inside each scan long enough to collide with the
// next tick, and records how many scans ever ran at the same time.
type slowReminderStub struct {
	mu        sync.Mutex
	delay     time.Duration
	calls     int
	active    int
	maxActive int
}

func (s *slowReminderStub) ProcessDueFollowUps(_ context.Context) error {
	s.mu.Lock()
	s.calls++
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.mu.Unlock()

	time.Sleep(s.delay)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return nil
}

func (s *slowReminderStub) snapshot() (calls, active, maxActive int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, s.active, s.maxActive
}

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	stub := &slowReminderStub{delay: 1500 * time.Millisecond}
	s := New(stub, "@every 100ms", zerolog.Nop())

	require.NoError(t, s.Start())
	time.Sleep(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	s.Stop(ctx)

	calls, _, maxActive := stub.snapshot()
	require.GreaterOrEqual(t, calls, 1)
	require.Equal(t, 1, maxActive, "a slow scan must suppress the ticks it overlaps")
	// With 100ms ticks and a 1.5s scan, overlap would push the call count
	// towards twenty; the single-flight chain keeps it to one per scan window.
	require.LessOrEqual(t, calls, 3)
}

func TestSchedulerStopDrainsInFlightScan(t *testing.T) {
	stub := &slowReminderStub{delay: 500 * time.Millisecond}
	s := New(stub, "@every 100ms", zerolog.Nop())

	require.NoError(t, s.Start())

	// Wait for a scan to actually start before shutting down.
	require.Eventually(t, func() bool {
		calls, _, _ := stub.snapshot()
		return calls > 0
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	s.Stop(ctx)

	_, active, _ := stub.snapshot()
	require.Zero(t, active, "Stop must wait for the running scan to finish")
}

func TestSchedulerRejectsBadCronSpec(t *testing.T) {
	s := New(&slowReminderStub{}, "not a cron spec", zerolog.Nop())
	require.Error(t, s.Start())
}
