package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pthm-cable/leverbox/env"
)

// RunLogTimeFormat is the timestamp layout used in run log file names.
const RunLogTimeFormat = "20060102-150405"

// runIDPrefix is how many run ID characters go into a run log name.
const runIDPrefix = 8

// RunLogName returns the file name of the run log started at t. A
// non-empty runID adds its first characters, so runs started in the same
// second get different names.
func RunLogName(t time.Time, runID string) string {
	ts := t.Format(RunLogTimeFormat)
	if runID == "" {
		return fmt.Sprintf("simulation_data_%s.json", ts)
	}
	if len(runID) > runIDPrefix {
		runID = runID[:runIDPrefix]
	}
	return fmt.Sprintf("simulation_data_%s_%s.json", ts, runID)
}

// SaveRunLog writes records as a JSON array to dir, creating dir if needed.
// An existing file is never overwritten: on a name clash a numeric suffix
// is added. Returns the path written.
func SaveRunLog(records []env.StepRecord, dir string, startedAt time.Time, runID string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	if records == nil {
		records = []env.StepRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run log: %w", err)
	}

	base := strings.TrimSuffix(RunLogName(startedAt, runID), ".json")
	for n := 1; ; n++ {
		name := base + ".json"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.json", base, n)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create run log: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write run log: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close run log: %w", err)
		}
		return path, nil
	}
}

// LoadRunLog reads a run log written by SaveRunLog.
func LoadRunLog(path string) ([]env.StepRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run log: %w", err)
	}

	var records []env.StepRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal run log: %w", err)
	}

	return records, nil
}
