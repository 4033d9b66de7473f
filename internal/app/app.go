package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"fileeraser/internal/config"
	"fileeraser/internal/erase"
	"fileeraser/internal/logging"
	"fileeraser/internal/reporting"
	"fileeraser/internal/security"
	"fileeraser/internal/system"
)

// Event names emitted to the frontend.
const (
	EventProgress = "erase:progress"
	EventFinished = "erase:finished"
	EventError    = "erase:error"
)

// App is the structure bound to the Wails frontend. The frontend
// drives it with SelectFile and StartErase and listens for progress
// events; the blocking work never runs on the UI side.
type App struct {
	ctx         context.Context
	cfg         *config.Config
	logger      *logging.Logger
	coordinator *erase.Coordinator
}

func New(cfg *config.Config, logger *logging.Logger, coordinator *erase.Coordinator) *App {
	return &App{
		ctx:         context.Background(),
		cfg:         cfg,
		logger:      logger,
		coordinator: coordinator,
	}
}

// Startup is called when the app starts up
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.logger.Log("INFO", "Wails application started")
}

// DomReady is called after front-end dom has been loaded
func (a *App) DomReady(ctx context.Context) {
	a.logger.Log("INFO", "Frontend DOM ready")
}

// BeforeClose is called when the application is about to quit.
// Returning true prevents shutdown.
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	a.logger.Log("INFO", "Application closing")
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Log("INFO", "Wails application shutdown")
}

// SelectFile opens the native file dialog and returns the chosen path.
func (a *App) SelectFile() (string, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open file...",
		Filters: []runtime.FileFilter{
			{DisplayName: "All files", Pattern: "*"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("file dialog failed: %w", err)
	}
	if path == "" {
		return "", fmt.Errorf("no file was selected")
	}
	return path, nil
}

// Erasing reports whether a job is currently running.
func (a *App) Erasing() bool {
	return a.coordinator.Running()
}

// StartErase launches an erase job for path and streams progress to
// the frontend. Returns false when the target is rejected or a job is
// already running.
func (a *App) StartErase(path string) bool {
	if err := security.CheckTarget(path, a.cfg); err != nil {
		a.logger.Log("ERROR", "Target rejected", "path", path, "error", err.Error())
		runtime.EventsEmit(a.ctx, EventError, err.Error())
		return false
	}

	size, err := system.FileSize(path)
	if err != nil {
		a.logger.Log("ERROR", "Cannot stat target", "path", path, "error", err.Error())
		runtime.EventsEmit(a.ctx, EventError, err.Error())
		return false
	}

	stream, ok := a.coordinator.Start(path)
	if !ok {
		return false
	}

	go a.consume(path, size, stream)
	return true
}

// consume pulls events off the stream one at a time and translates
// them into frontend events. It runs on its own goroutine, separate
// from both the engine and the UI.
func (a *App) consume(path string, size int64, stream *erase.Stream) {
	start := time.Now()
	success := false

	for {
		e, ok := stream.Next()
		if !ok {
			break
		}

		switch e.Type {
		case erase.EventUpdated:
			runtime.EventsEmit(a.ctx, EventProgress, e.Fraction)
		case erase.EventFinished:
			success = e.Success
			if !e.Success {
				a.logger.Log("ERROR", "Erase finished with failure", "path", path)
			}
			runtime.EventsEmit(a.ctx, EventFinished, e.Success)
		}
	}

	if a.cfg.Reporting.Enabled {
		report := &reporting.EraseReport{
			JobID:     uuid.NewString(),
			Path:      path,
			Passes:    a.cfg.Erase.Passes,
			Bytes:     size,
			StartTime: start,
			EndTime:   time.Now(),
			Success:   success,
		}
		report.Finalize()
		if _, err := reporting.Write(a.cfg.Reporting.LocalPath, report); err != nil {
			a.logger.Log("WARN", "Failed to write erase report", "error", err.Error())
		}
	}
}
