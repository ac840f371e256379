// Command sweep runs the lever box headless over many seeds and reports
// the distribution of lever preference and energy outcomes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/leverbox/config"
)

// formatDuration renders d as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	numSeeds := flag.Int("seeds", 50, "Number of seeds to run")
	baseSeed := flag.Int64("base-seed", 0, "Offset added to every generated seed")
	steps := flag.Int("steps", 0, "Steps per run (0 = run.steps from config)")
	workers := flag.Int("workers", runtime.NumCPU(), "Parallel runs")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(1)
	}
	if err := run(*configPath, *outputDir, *numSeeds, *baseSeed, *steps, *workers); err != nil {
		slog.Error("sweep failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, numSeeds int, baseSeed int64, steps, workers int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if steps <= 0 {
		steps = cfg.Run.Steps
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	seeds := sweepSeeds(numSeeds, baseSeed)
	startTime := time.Now()
	fmt.Printf("Sweeping %d seeds x %d steps on %d workers\n", len(seeds), steps, workers)

	sums, err := RunBatch(ctx, cfg, seeds, steps, workers, func(done, total int) {
		elapsed := time.Since(startTime)
		remaining := time.Duration(total-done) * (elapsed / time.Duration(done))
		fmt.Printf("Run %d/%d | elapsed: %s, ETA: %s\n", done, total, formatDuration(elapsed), formatDuration(remaining))
	})
	if err != nil {
		return err
	}

	rows := make([]SeedRow, len(sums))
	for i, s := range sums {
		rows[i] = rowFromSummary(s)
	}
	f, err := os.Create(filepath.Join(outputDir, "seeds.csv"))
	if err != nil {
		return fmt.Errorf("create seeds.csv: %w", err)
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("write seeds.csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	agg := Summarize(sums, steps, cfg)
	// JSON has no infinity
	out := agg
	if math.IsInf(out.BreakEvenBonus, 0) {
		out.BreakEvenBonus = -1
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "aggregate.json"), data, 0644); err != nil {
		return fmt.Errorf("write aggregate.json: %w", err)
	}
	if err := cfg.WriteYAML(filepath.Join(outputDir, "config.yaml")); err != nil {
		return err
	}

	fmt.Printf("\nSweep complete after %d runs in %s\n", agg.Runs, formatDuration(time.Since(startTime)))
	fmt.Printf("  final energy: %.2f ± %.2f\n", agg.FinalEnergyMean, agg.FinalEnergyStd)
	fmt.Printf("  log2 L/R:     %.3f ± %.3f (p10 %.3f, p50 %.3f, p90 %.3f)\n",
		agg.LogRatioMean, agg.LogRatioStd, agg.LogRatioP10, agg.LogRatioP50, agg.LogRatioP90)
	fmt.Printf("  contact rate: %.3f, left share %.3f\n", agg.ContactRateMean, agg.LeftShare)
	fmt.Printf("  break-even energy bonus: %.3f\n", agg.BreakEvenBonus)
	fmt.Printf("Results saved to: %s\n", outputDir)
	return nil
}
