package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/leverbox/config"
	"github.com/pthm-cable/leverbox/telemetry"
)

func TestSweepSeeds(t *testing.T) {
	seeds := sweepSeeds(3, 0)
	want := []int64{42, 1042, 2042}
	if !reflect.DeepEqual(seeds, want) {
		t.Errorf("seeds = %v, want %v", seeds, want)
	}
}

func TestRunBatchMatchesSequential(t *testing.T) {
	cfg := config.Default()
	seeds := sweepSeeds(6, 0)

	calls := 0
	parallel, err := RunBatch(context.Background(), cfg, seeds, 30, 3, func(done, total int) {
		calls++
		if total != len(seeds) {
			t.Errorf("total = %d, want %d", total, len(seeds))
		}
	})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if calls != len(seeds) {
		t.Errorf("progress called %d times, want %d", calls, len(seeds))
	}

	for i, seed := range seeds {
		seq, err := runSeed(cfg, seed, 30)
		if err != nil {
			t.Fatal(err)
		}
		// run ids are random per run
		seq.RunID = parallel[i].RunID
		if !reflect.DeepEqual(seq, parallel[i]) {
			t.Errorf("seed %d: parallel %+v != sequential %+v", seed, parallel[i], seq)
		}
		if parallel[i].Seed != seed || parallel[i].Steps != 30 {
			t.Errorf("result %d = seed %d steps %d", i, parallel[i].Seed, parallel[i].Steps)
		}
	}
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunBatch(ctx, config.Default(), sweepSeeds(4, 0), 10, 2, nil); err == nil {
		t.Error("expected error from cancelled batch")
	}
}

func TestSummarize(t *testing.T) {
	cfg := config.Default()
	sums := []telemetry.Summary{
		{FinalEnergy: 180, FinalLogRatio: 1, ContactRate: 0.1, LeftContacts: 3, RightContacts: 1},
		{FinalEnergy: 200, FinalLogRatio: -1, ContactRate: 0.3, LeftContacts: 1, RightContacts: 3},
	}

	agg := Summarize(sums, 100, cfg)
	if agg.Runs != 2 {
		t.Errorf("Runs = %d, want 2", agg.Runs)
	}
	if agg.FinalEnergyMean != 190 {
		t.Errorf("FinalEnergyMean = %v, want 190", agg.FinalEnergyMean)
	}
	if agg.LogRatioMean != 0 {
		t.Errorf("LogRatioMean = %v, want 0", agg.LogRatioMean)
	}
	// quantiles of {-1, 1} under linear interpolation of the empirical CDF
	if agg.LogRatioP10 != -1 || agg.LogRatioP50 != -1 || math.Abs(agg.LogRatioP90-0.6) > 1e-9 {
		t.Errorf("log ratio p10/p50/p90 = %v/%v/%v, want -1/-1/0.6", agg.LogRatioP10, agg.LogRatioP50, agg.LogRatioP90)
	}
	if agg.LeftShare != 0.5 {
		t.Errorf("LeftShare = %v, want 0.5", agg.LeftShare)
	}
	// decay 0.25 * 100 steps over 20 contact steps
	if math.Abs(agg.BreakEvenBonus-1.25) > 1e-9 {
		t.Errorf("BreakEvenBonus = %v, want 1.25", agg.BreakEvenBonus)
	}

	none := Summarize([]telemetry.Summary{{FinalEnergy: 175}}, 100, cfg)
	if !math.IsInf(none.BreakEvenBonus, 1) {
		t.Errorf("BreakEvenBonus without contacts = %v, want +Inf", none.BreakEvenBonus)
	}
	if none.FinalEnergyStd != 0 {
		t.Errorf("single-run std = %v, want 0", none.FinalEnergyStd)
	}
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	if err := run("", dir, 3, 0, 20, 2); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "seeds.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var rows []SeedRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("parse seeds.csv: %v", err)
	}
	if len(rows) != 3 || rows[0].Seed != 42 || rows[0].Steps != 20 {
		t.Errorf("rows = %+v", rows)
	}

	for _, name := range []string{"aggregate.json", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{65 * time.Second, "1m05s"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "2h03m04s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
