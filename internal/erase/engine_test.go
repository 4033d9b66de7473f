package erase_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fileeraser/internal/config"
	"fileeraser/internal/erase"
	"fileeraser/internal/logging"
)

type collectSink struct {
	events []erase.Event
}

func (c *collectSink) Emit(e erase.Event) error {
	c.events = append(c.events, e)
	return nil
}

func newTestEngine(t *testing.T, cfg *config.Config) *erase.Engine {
	t.Helper()

	logger, err := logging.New(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	engine, err := erase.NewEngine(cfg, logger)
	require.NoError(t, err)
	return engine
}

func writeTempFile(t *testing.T, size int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "victim.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func requireMonotonic(t *testing.T, events []erase.Event) {
	t.Helper()

	last := -1.0
	for _, e := range events {
		if e.Type != erase.EventUpdated {
			continue
		}
		require.GreaterOrEqual(t, e.Fraction, last, "fractions must be non-decreasing")
		last = e.Fraction
	}
}

func TestOverwriteRemovesFile(t *testing.T) {
	cfg := config.Default()
	engine := newTestEngine(t, cfg)
	path := writeTempFile(t, 10000)

	sink := &collectSink{}
	require.NoError(t, engine.Overwrite(path, 2, sink))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "file must be gone after a successful erase")

	require.NotEmpty(t, sink.events)
	last := sink.events[len(sink.events)-1]
	require.Equal(t, erase.EventUpdated, last.Type)
	require.Equal(t, 100.0, last.Fraction)
	requireMonotonic(t, sink.events)
}

func TestOverwriteEmptyFile(t *testing.T) {
	cfg := config.Default()
	engine := newTestEngine(t, cfg)
	path := writeTempFile(t, 0)

	sink := &collectSink{}
	require.NoError(t, engine.Overwrite(path, 3, sink))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.Len(t, sink.events, 1, "empty file yields a single event")
	require.Equal(t, erase.EventUpdated, sink.events[0].Type)
	require.Equal(t, 100.0, sink.events[0].Fraction)
}

func TestOverwriteEventVolume(t *testing.T) {
	// 10 MiB at a 4096-byte buffer is 2560 writes per pass, 7680 over
	// three passes; an event every 100th write gives 76 intermediate
	// updates plus the mandatory final 100%.
	cfg := config.Default()
	engine := newTestEngine(t, cfg)
	path := writeTempFile(t, 10*1024*1024)

	sink := &collectSink{}
	require.NoError(t, engine.Overwrite(path, 3, sink))

	require.Len(t, sink.events, 77)
	require.Equal(t, 100.0, sink.events[len(sink.events)-1].Fraction)
	requireMonotonic(t, sink.events)
}

func TestOverwriteMissingFile(t *testing.T) {
	cfg := config.Default()
	engine := newTestEngine(t, cfg)

	sink := &collectSink{}
	err := engine.Overwrite(filepath.Join(t.TempDir(), "nope"), 3, sink)
	require.Error(t, err)
	require.Empty(t, sink.events, "a failed open must not produce progress")
}

func TestOverwriteRejectsZeroPasses(t *testing.T) {
	cfg := config.Default()
	engine := newTestEngine(t, cfg)
	path := writeTempFile(t, 100)

	err := engine.Overwrite(path, 0, &collectSink{})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr, "file must survive a rejected request")
}

func TestOverwriteSinkFailureAborts(t *testing.T) {
	cfg := config.Default()
	engine := newTestEngine(t, cfg)
	// Large enough to cross the 100-write emission threshold.
	path := writeTempFile(t, 500*1024)

	failing := erase.SinkFunc(func(erase.Event) error {
		return erase.ErrSinkClosed
	})

	err := engine.Overwrite(path, 1, failing)
	require.ErrorIs(t, err, erase.ErrSinkClosed)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr, "an aborted job leaves the file in place")
}

func TestOverwriteSmallFileBelowThreshold(t *testing.T) {
	// Fewer than 100 writes: no intermediate events, only the final 100%.
	cfg := config.Default()
	engine := newTestEngine(t, cfg)
	path := writeTempFile(t, 3*4096)

	sink := &collectSink{}
	require.NoError(t, engine.Overwrite(path, 3, sink))

	require.Len(t, sink.events, 1)
	require.Equal(t, 100.0, sink.events[0].Fraction)
}

func TestNewEngineRejectsBadIntervals(t *testing.T) {
	logger, err := logging.New(config.Default(), false)
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	cfg := config.Default()
	cfg.Erase.ProgressEvery = 0
	_, err = erase.NewEngine(cfg, logger)
	require.Error(t, err, "an unvalidated zero interval must not reach the write loop")

	cfg = config.Default()
	cfg.Erase.BufferSize = 0
	_, err = erase.NewEngine(cfg, logger)
	require.Error(t, err)
}

func TestOverwriteCryptoPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Erase.RNG = "crypto"
	engine := newTestEngine(t, cfg)
	path := writeTempFile(t, 20000)

	sink := &collectSink{}
	require.NoError(t, engine.Overwrite(path, 1, sink))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
