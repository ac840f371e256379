package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pthm-cable/leverbox/env"
	"github.com/pthm-cable/leverbox/telemetry"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGetRun(t *testing.T) {
	s := tempDB(t)
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	steps := []env.StepRecord{
		{Timestep: 0, Position: [3]float64{0.5, 0.5, 0.15}, Energy: 199.75},
		{Timestep: 1, Position: [3]float64{0.1, 0.3, 0.15}, Energy: 204.5, LeftLeverContacts: 1},
	}
	rec, err := s.RecordRun(RunRecord{
		Seed:       42,
		Steps:      2,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		RunLogPath: "data/simulation_data_20240501-120000.json",
		GIFPath:    "output/my_simulation.gif",
		Summary:    telemetry.Summary{Seed: 42, Steps: 2, LeftContacts: 1, FinalEnergy: 204.5},
	}, steps)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated run id")
	}
	if rec.Summary.RunID != rec.ID {
		t.Errorf("summary run id = %q, want %q", rec.Summary.RunID, rec.ID)
	}

	got, err := s.GetRun(rec.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.StartedAt.Equal(rec.StartedAt) || !got.FinishedAt.Equal(rec.FinishedAt) {
		t.Errorf("times = %v/%v, want %v/%v", got.StartedAt, got.FinishedAt, rec.StartedAt, rec.FinishedAt)
	}
	got.StartedAt, got.FinishedAt = rec.StartedAt, rec.FinishedAt
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("GetRun = %+v, want %+v", got, rec)
	}

	gotSteps, err := s.StepsFor(rec.ID)
	if err != nil {
		t.Fatalf("StepsFor: %v", err)
	}
	if !reflect.DeepEqual(gotSteps, steps) {
		t.Errorf("StepsFor = %+v, want %+v", gotSteps, steps)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetRun("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := tempDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.RecordRun(RunRecord{
			ID:         NewRunID(),
			Seed:       int64(i),
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		}, nil)
		if err != nil {
			t.Fatalf("RecordRun %d: %v", i, err)
		}
	}

	all, err := s.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d runs, want 3", len(all))
	}
	for i, want := range []int64{2, 1, 0} {
		if all[i].Seed != want {
			t.Errorf("run %d seed = %d, want %d", i, all[i].Seed, want)
		}
	}

	two, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns(2): %v", err)
	}
	if len(two) != 2 {
		t.Errorf("got %d runs, want 2", len(two))
	}
}

func TestListRunsSubSecondOrder(t *testing.T) {
	s := tempDB(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// .120 formats shorter than .123 in RFC 3339 with trimmed zeros
	runs := []struct {
		id string
		at time.Duration
	}{
		{"older", 120 * time.Millisecond},
		{"newer", 123 * time.Millisecond},
		{"oldest", 0},
		{"newest", time.Second + 5*time.Nanosecond},
	}
	for _, r := range runs {
		at := base.Add(r.at)
		if _, err := s.RecordRun(RunRecord{ID: r.id, StartedAt: at, FinishedAt: at}, nil); err != nil {
			t.Fatalf("RecordRun %s: %v", r.id, err)
		}
	}

	all, err := s.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	want := []string{"newest", "newer", "older", "oldest"}
	if len(all) != len(want) {
		t.Fatalf("got %d runs, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("run %d = %s, want %s", i, all[i].ID, id)
		}
	}

	got, err := s.GetRun("newer")
	if err != nil {
		t.Fatal(err)
	}
	if !got.StartedAt.Equal(base.Add(123 * time.Millisecond)) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, base.Add(123*time.Millisecond))
	}
}

func TestRecordRunDuplicateID(t *testing.T) {
	s := tempDB(t)
	rec := RunRecord{ID: "fixed", StartedAt: time.Now(), FinishedAt: time.Now()}
	if _, err := s.RecordRun(rec, nil); err != nil {
		t.Fatalf("first RecordRun: %v", err)
	}
	if _, err := s.RecordRun(rec, nil); err == nil {
		t.Error("expected error on duplicate run id")
	}
}
