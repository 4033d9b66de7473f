package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EraseReport is the JSON record written after an erase job.
type EraseReport struct {
	JobID     string    `json:"job_id"`
	Path      string    `json:"path"`
	Passes    int       `json:"passes"`
	Bytes     int64     `json:"bytes"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`
	SpeedMBps float64   `json:"speed_mbps"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Finalize fills the derived fields from the recorded timestamps.
func (r *EraseReport) Finalize() {
	d := r.EndTime.Sub(r.StartTime)
	r.Duration = d.String()
	if d.Seconds() > 0 {
		// Bytes covers all passes.
		r.SpeedMBps = float64(r.Bytes) * float64(r.Passes) / (1024 * 1024) / d.Seconds()
	}
}

// Write stores the report as a timestamped JSON file under dir and
// returns the full path.
func Write(dir string, report *EraseReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("erase_%s_%s.json", report.EndTime.Format("20060102_150405"), report.JobID)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	return path, nil
}
