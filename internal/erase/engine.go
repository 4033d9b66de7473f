package erase

import (
	"fmt"
	"io"
	"os"

	"fileeraser/internal/config"
	"fileeraser/internal/logging"
)

// Engine performs the destructive multi-pass overwrite of a single
// regular file. It is synchronous and has no knowledge of how its
// Sink is scheduled; the coordinator owns the threading policy.
type Engine struct {
	bufferSize    int
	progressEvery uint64
	maxSpeedMBps  float64
	fill          Filler
	logger        *logging.Logger
}

func NewEngine(cfg *config.Config, logger *logging.Logger) (*Engine, error) {
	fill, err := NewFiller(FillPolicy(cfg.Erase.RNG))
	if err != nil {
		return nil, err
	}

	// A config built by hand may bypass config.Validate; a zero
	// interval would take the emission modulo down with it.
	if cfg.Erase.ProgressEvery <= 0 {
		return nil, fmt.Errorf("progress interval must be positive, got %d", cfg.Erase.ProgressEvery)
	}
	if cfg.Erase.BufferSize <= 0 {
		return nil, fmt.Errorf("buffer size must be positive, got %d", cfg.Erase.BufferSize)
	}

	return &Engine{
		bufferSize:    cfg.Erase.BufferSize,
		progressEvery: uint64(cfg.Erase.ProgressEvery),
		maxSpeedMBps:  cfg.Erase.MaxSpeedMBps,
		fill:          fill,
		logger:        logger,
	}, nil
}

// Overwrite rewrites the file's full byte range with random data the
// given number of times, syncing after every pass, then removes the
// directory entry. The data is overwritten while the name still
// resolves to the inode; unlinking first would wipe a dead entry.
//
// Progress is emitted through sink as Updated events; the caller is
// responsible for the terminal Finished event. Any I/O or sink error
// aborts the job immediately, leaving a partially overwritten file.
func (e *Engine) Overwrite(path string, passes int, sink Sink) error {
	if passes < 1 {
		return fmt.Errorf("passes must be at least 1, got %d", passes)
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	fileSize := info.Size()
	if fileSize == 0 {
		// Nothing to overwrite, just drop the entry.
		file.Close()
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return sink.Emit(Updated(100.0))
	}

	e.logger.Log("INFO", "Erase started", "path", path, "size", fileSize, "passes", passes)

	writer := NewThrottledWriter(file, e.maxSpeedMBps)
	buffer := make([]byte, e.bufferSize)

	totalWork := uint64(passes) * uint64(fileSize)
	var completedWork uint64
	var writeCount uint64

	for pass := 0; pass < passes; pass++ {
		if _, err := writer.Seek(0, io.SeekStart); err != nil {
			writer.Close()
			return fmt.Errorf("failed to seek %s: %w", path, err)
		}

		remaining := fileSize
		for remaining > 0 {
			toWrite := int64(len(buffer))
			if remaining < toWrite {
				toWrite = remaining
			}
			chunk := buffer[:toWrite]

			if err := e.fill(chunk); err != nil {
				writer.Close()
				return err
			}

			off := 0
			for off < int(toWrite) {
				n, err := writer.Write(chunk[off:])
				if n > 0 {
					off += n
				}
				if err != nil {
					writer.Close()
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				if n == 0 {
					writer.Close()
					return fmt.Errorf("write returned 0 bytes without error")
				}
			}

			remaining -= toWrite
			completedWork += uint64(toWrite)
			writeCount++

			// Throttled emission keeps the event volume independent
			// of file size.
			if writeCount%e.progressEvery == 0 {
				fraction := float64(completedWork) / float64(totalWork) * 100.0
				if err := sink.Emit(Updated(fraction)); err != nil {
					writer.Close()
					return err
				}
			}
		}

		// The pass must reach persistent storage before the next one
		// starts, otherwise "overwritten N times" means nothing.
		if err := writer.Sync(); err != nil {
			writer.Close()
			return fmt.Errorf("failed to sync %s: %w", path, err)
		}

		e.logger.Log("DEBUG", "Pass completed", "path", path, "pass", pass+1, "total", passes)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	e.logger.Log("INFO", "Erase completed", "path", path, "bytes", completedWork)

	// The observer must always see a terminal 100% even when
	// throttling skipped the exact boundary.
	return sink.Emit(Updated(100.0))
}
