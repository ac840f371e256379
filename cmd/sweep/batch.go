package main

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/leverbox/config"
	"github.com/pthm-cable/leverbox/runner"
	"github.com/pthm-cable/leverbox/telemetry"
)

// SeedRow is one line of seeds.csv.
type SeedRow struct {
	Seed          int64   `csv:"seed"`
	Steps         int     `csv:"steps"`
	FinalEnergy   float64 `csv:"final_energy"`
	LeftContacts  int     `csv:"left_contacts"`
	RightContacts int     `csv:"right_contacts"`
	RewardsEarned int     `csv:"rewards_earned"`
	ContactRate   float64 `csv:"contact_rate"`
	FinalLogRatio float64 `csv:"final_log_ratio"`
	PathLength    float64 `csv:"path_length"`
}

func rowFromSummary(s telemetry.Summary) SeedRow {
	return SeedRow{
		Seed:          s.Seed,
		Steps:         s.Steps,
		FinalEnergy:   s.FinalEnergy,
		LeftContacts:  s.LeftContacts,
		RightContacts: s.RightContacts,
		RewardsEarned: s.RewardsEarned,
		ContactRate:   s.ContactRate,
		FinalLogRatio: s.FinalLogRatio,
		PathLength:    s.PathLength,
	}
}

// sweepSeeds returns n distinct non-zero seeds.
func sweepSeeds(n int, base int64) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = base + int64(i)*1000 + 42
	}
	return seeds
}

// runSeed performs one headless run and summarizes it.
func runSeed(cfg *config.Config, seed int64, steps int) (telemetry.Summary, error) {
	r, err := runner.New(cfg, runner.Options{Seed: seed, Steps: steps})
	if err != nil {
		return telemetry.Summary{}, err
	}
	defer r.Close()

	for r.Tick() < steps {
		if _, err := r.Step(); err != nil {
			return telemetry.Summary{}, err
		}
	}
	return r.Summary(), nil
}

// RunBatch runs every seed on up to workers goroutines. Results are in
// seed order. progress, if set, is called after each finished run.
func RunBatch(ctx context.Context, cfg *config.Config, seeds []int64, steps, workers int, progress func(done, total int)) ([]telemetry.Summary, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]telemetry.Summary, len(seeds))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				sum, err := runSeed(cfg, seeds[idx], steps)

				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = fmt.Errorf("seed %d: %w", seeds[idx], err)
				}
				results[idx] = sum
				done++
				if progress != nil {
					progress(done, len(seeds))
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range seeds {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Aggregate summarizes a batch of runs.
type Aggregate struct {
	Runs  int `json:"runs"`
	Steps int `json:"steps"`

	FinalEnergyMean float64 `json:"final_energy_mean"`
	FinalEnergyStd  float64 `json:"final_energy_std"`

	LogRatioMean float64 `json:"log_ratio_mean"`
	LogRatioStd  float64 `json:"log_ratio_std"`
	LogRatioP10  float64 `json:"log_ratio_p10"`
	LogRatioP50  float64 `json:"log_ratio_p50"`
	LogRatioP90  float64 `json:"log_ratio_p90"`

	ContactRateMean float64 `json:"contact_rate_mean"`
	LeftShare       float64 `json:"left_share"` // left / (left + right) over all runs

	// BreakEvenBonus is the energy bonus at which the mean final energy
	// equals the initial energy. +Inf when no run touched a lever.
	BreakEvenBonus float64 `json:"break_even_bonus"`
}

// Summarize aggregates batch results under the energy settings of cfg.
func Summarize(sums []telemetry.Summary, steps int, cfg *config.Config) Aggregate {
	agg := Aggregate{Runs: len(sums), Steps: steps}
	if len(sums) == 0 {
		return agg
	}

	energy := make([]float64, len(sums))
	ratio := make([]float64, len(sums))
	rate := make([]float64, len(sums))
	var left, right int
	for i, s := range sums {
		energy[i] = s.FinalEnergy
		ratio[i] = s.FinalLogRatio
		rate[i] = s.ContactRate
		left += s.LeftContacts
		right += s.RightContacts
	}

	agg.FinalEnergyMean, agg.FinalEnergyStd = stat.MeanStdDev(energy, nil)
	agg.LogRatioMean, agg.LogRatioStd = stat.MeanStdDev(ratio, nil)
	agg.ContactRateMean = stat.Mean(rate, nil)
	if len(sums) < 2 {
		agg.FinalEnergyStd, agg.LogRatioStd = 0, 0
	}

	sorted := append([]float64(nil), ratio...)
	sort.Float64s(sorted)
	agg.LogRatioP10 = telemetry.Percentile(sorted, 0.10)
	agg.LogRatioP50 = telemetry.Percentile(sorted, 0.50)
	agg.LogRatioP90 = telemetry.Percentile(sorted, 0.90)

	if left+right > 0 {
		agg.LeftShare = float64(left) / float64(left+right)
	}

	// final = initial - decay*steps + bonus*contactSteps, and contactSteps
	// does not depend on the bonus.
	contactSteps := agg.ContactRateMean * float64(steps)
	if contactSteps > 0 {
		agg.BreakEvenBonus = cfg.Energy.Decay * float64(steps) / contactSteps
	} else {
		agg.BreakEvenBonus = math.Inf(1)
	}

	return agg
}
