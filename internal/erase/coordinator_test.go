package erase_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fileeraser/internal/config"
	"fileeraser/internal/erase"
	"fileeraser/internal/logging"
)

func newTestCoordinator(t *testing.T, cfg *config.Config) *erase.Coordinator {
	t.Helper()

	logger, err := logging.New(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	engine, err := erase.NewEngine(cfg, logger)
	require.NoError(t, err)
	return erase.NewCoordinator(engine, cfg, logger)
}

// drain consumes the stream to exhaustion and returns all events.
func drain(t *testing.T, stream *erase.Stream) []erase.Event {
	t.Helper()

	var events []erase.Event
	deadline := time.After(10 * time.Second)
	for {
		got := make(chan struct{})
		var e erase.Event
		var ok bool
		go func() {
			e, ok = stream.Next()
			close(got)
		}()

		select {
		case <-got:
		case <-deadline:
			t.Fatal("timeout draining stream")
		}

		if !ok {
			return events
		}
		events = append(events, e)
	}
}

func TestCoordinatorSuccessfulJob(t *testing.T) {
	cfg := config.Default()
	coordinator := newTestCoordinator(t, cfg)
	path := writeTempFile(t, 300*1024)

	stream, started := coordinator.Start(path)
	require.True(t, started)

	events := drain(t, stream)
	require.NotEmpty(t, events)

	var finishedCount int
	for i, e := range events {
		if e.Type == erase.EventFinished {
			finishedCount++
			require.Equal(t, len(events)-1, i, "Finished must be the last event")
			require.True(t, e.Success)
		}
	}
	require.Equal(t, 1, finishedCount, "exactly one Finished per job")
	requireMonotonic(t, events)

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.False(t, coordinator.Running(), "slot released after Finished is observed")
}

func TestCoordinatorFailureStillFinishes(t *testing.T) {
	cfg := config.Default()
	coordinator := newTestCoordinator(t, cfg)

	stream, started := coordinator.Start(filepath.Join(t.TempDir(), "missing"))
	require.True(t, started)

	events := drain(t, stream)
	require.Len(t, events, 1, "open failure yields only the terminal event")
	require.Equal(t, erase.EventFinished, events[0].Type)
	require.False(t, events[0].Success)
	require.False(t, coordinator.Running())
}

func TestCoordinatorIdempotentStart(t *testing.T) {
	cfg := config.Default()
	// Tiny queue and an event per write: the engine parks on the full
	// queue almost immediately, keeping the job running until drained.
	cfg.Erase.QueueCapacity = 1
	cfg.Erase.ProgressEvery = 1
	coordinator := newTestCoordinator(t, cfg)
	path := writeTempFile(t, 100*1024)

	stream, started := coordinator.Start(path)
	require.True(t, started)

	require.Eventually(t, coordinator.Running, time.Second, time.Millisecond)

	second, startedAgain := coordinator.Start(path)
	require.False(t, startedAgain, "second start while running is a no-op")
	require.Nil(t, second)

	events := drain(t, stream)
	require.Equal(t, erase.EventFinished, events[len(events)-1].Type)
	require.False(t, coordinator.Running())

	// A fresh job is possible once the previous one terminated.
	next := writeTempFile(t, 1024)
	third, restarted := coordinator.Start(next)
	require.True(t, restarted)
	drain(t, third)
}

func TestCoordinatorConsumerDisconnect(t *testing.T) {
	cfg := config.Default()
	cfg.Erase.QueueCapacity = 1
	cfg.Erase.ProgressEvery = 1
	coordinator := newTestCoordinator(t, cfg)
	path := writeTempFile(t, 100*1024)

	stream, started := coordinator.Start(path)
	require.True(t, started)

	stream.Close()

	// The engine aborts at its next emission and the slot frees up.
	require.Eventually(t, func() bool { return !coordinator.Running() },
		5*time.Second, 5*time.Millisecond)

	_, ok := stream.Next()
	require.False(t, ok, "a closed stream delivers nothing")
}

func TestCoordinatorStaleCloseKeepsNewJobRunning(t *testing.T) {
	cfg := config.Default()
	cfg.Erase.QueueCapacity = 1
	cfg.Erase.ProgressEvery = 1
	coordinator := newTestCoordinator(t, cfg)

	// First job runs to completion, releasing the slot.
	first, started := coordinator.Start(writeTempFile(t, 1024))
	require.True(t, started)
	drain(t, first)
	require.False(t, coordinator.Running())

	// Second job parks on the tiny queue and occupies the slot.
	second, started := coordinator.Start(writeTempFile(t, 100*1024))
	require.True(t, started)
	require.Eventually(t, coordinator.Running, time.Second, time.Millisecond)

	// Closing the stale handle must not free the second job's slot,
	// otherwise a third Start would run concurrently with it.
	first.Close()
	require.True(t, coordinator.Running(), "stale Close must not release the running job's slot")

	_, startedAgain := coordinator.Start(writeTempFile(t, 1024))
	require.False(t, startedAgain)

	events := drain(t, second)
	require.Equal(t, erase.EventFinished, events[len(events)-1].Type)
	require.False(t, coordinator.Running())
}

func TestCoordinatorStreamExhaustedAfterFinished(t *testing.T) {
	cfg := config.Default()
	coordinator := newTestCoordinator(t, cfg)
	path := writeTempFile(t, 1024)

	stream, started := coordinator.Start(path)
	require.True(t, started)

	drain(t, stream)

	_, ok := stream.Next()
	require.False(t, ok, "Next after Finished reports exhaustion")
}
