// Package telemetry records runs: the JSON run log, per-step CSV rows,
// run summaries and phase timings.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/leverbox/config"
	"github.com/pthm-cable/leverbox/env"
)

// StepRow is the flat CSV form of env.StepRecord.
type StepRow struct {
	Timestep           int     `csv:"timestep"`
	X                  float64 `csv:"x"`
	Y                  float64 `csv:"y"`
	Z                  float64 `csv:"z"`
	Reward             float64 `csv:"reward"`
	Energy             float64 `csv:"energy"`
	LeftLeverContacts  int     `csv:"left_lever_contacts"`
	RightLeverContacts int     `csv:"right_lever_contacts"`
	Action             string  `csv:"action"`
}

// ToCSV converts a step record to a flat CSV-friendly struct.
func ToCSV(r env.StepRecord, action env.Action) StepRow {
	return StepRow{
		Timestep:           r.Timestep,
		X:                  r.Position[0],
		Y:                  r.Position[1],
		Z:                  r.Position[2],
		Reward:             r.Reward,
		Energy:             r.Energy,
		LeftLeverContacts:  r.LeftLeverContacts,
		RightLeverContacts: r.RightLeverContacts,
		Action:             action.String(),
	}
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	stepsFile *os.File

	// Track if headers have been written
	stepsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "steps.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating steps.csv: %w", err)
	}

	return &OutputManager{dir: dir, stepsFile: f}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStep appends one row to steps.csv.
func (om *OutputManager) WriteStep(row StepRow) error {
	if om == nil {
		return nil
	}

	records := []StepRow{row}

	if !om.stepsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.stepsFile); err != nil {
			return fmt.Errorf("writing step: %w", err)
		}
		om.stepsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.stepsFile); err != nil {
			return fmt.Errorf("writing step: %w", err)
		}
	}

	return nil
}

// WriteSummary saves the run summary as JSON.
func (om *OutputManager) WriteSummary(s Summary) error {
	if om == nil {
		return nil
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "summary.json"), data, 0644); err != nil {
		return fmt.Errorf("writing summary.json: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil || om.stepsFile == nil {
		return nil
	}
	return om.stepsFile.Close()
}

// ReadSteps loads a steps.csv written by an OutputManager.
func ReadSteps(path string) ([]StepRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open steps: %w", err)
	}
	defer f.Close()

	var rows []StepRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse steps: %w", err)
	}
	return rows, nil
}
