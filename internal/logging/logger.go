package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fileeraser/internal/config"
)

// Logger is a leveled key/value logger with an optional file sink.
// ERROR and FATAL always reach stdout; lower levels only in verbose mode.
type Logger struct {
	level   string
	file    *os.File
	verbose bool
}

func New(cfg *config.Config, verbose bool) (*Logger, error) {
	l := &Logger{
		level:   cfg.Logging.Level,
		verbose: verbose,
	}

	if cfg.Logging.File != "" {
		logDir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("[WARN] Cannot create log directory %s: %v\n", logDir, err)
			fmt.Printf("[WARN] Logging to stdout instead\n")
			return l, nil
		}

		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("[WARN] Cannot open log file %s: %v\n", cfg.Logging.File, err)
			fmt.Printf("[WARN] Logging to stdout instead\n")
			return l, nil
		}
		l.file = f
	}

	return l, nil
}

func (l *Logger) Log(level, message string, fields ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)

	if len(fields) > 0 {
		entry += fmt.Sprintf(" %v", fields)
	}

	if l.file != nil {
		l.file.WriteString(entry + "\n")
		l.file.Sync()
	}

	if l.verbose || level == "ERROR" || level == "FATAL" {
		fmt.Println(entry)
	}
}

func (l *Logger) shouldLog(level string) bool {
	levels := map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3, "FATAL": 4}
	current := levels[l.level]
	target := levels[level]
	return target >= current
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
