package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/leverbox/env"
)

// Summary aggregates one run for the run index and summary.json.
type Summary struct {
	RunID string `json:"run_id"`
	Seed  int64  `json:"seed"`
	Steps int    `json:"steps"`

	FinalEnergy float64 `json:"final_energy"`
	EnergyMean  float64 `json:"energy_mean"`
	EnergyStd   float64 `json:"energy_std"`
	EnergyMin   float64 `json:"energy_min"`
	EnergyMax   float64 `json:"energy_max"`
	EnergyP10   float64 `json:"energy_p10"`
	EnergyP50   float64 `json:"energy_p50"`
	EnergyP90   float64 `json:"energy_p90"`

	LeftContacts  int     `json:"left_contacts"`
	RightContacts int     `json:"right_contacts"`
	RewardsEarned int     `json:"rewards_earned"`
	ContactRate   float64 `json:"contact_rate"` // fraction of steps that bumped a counter
	FinalLogRatio float64 `json:"final_log_ratio"`
	PathLength    float64 `json:"path_length"` // distance travelled on the floor plane
}

// Summarize computes run statistics from an agent state.
// Energy statistics cover the per-step values; a run with no steps
// reports the initial energy.
func Summarize(st *env.AgentState) Summary {
	steps := st.Steps()

	energies := st.EnergyHistory
	if steps > 0 {
		energies = st.StepEnergy()
	}
	mean, p10, p50, p90 := ComputeEnergyStats(energies)

	var contactSteps int
	for i := 1; i <= steps; i++ {
		if st.LeftContacts[i] != st.LeftContacts[i-1] || st.RightContacts[i] != st.RightContacts[i-1] {
			contactSteps++
		}
	}
	var rate float64
	if steps > 0 {
		rate = float64(contactSteps) / float64(steps)
	}

	var path float64
	for i := 1; i < len(st.Trail.XY); i++ {
		a, b := st.Trail.XY[i-1], st.Trail.XY[i]
		path += floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
	}

	s := Summary{
		Steps:         steps,
		FinalEnergy:   st.Energy,
		EnergyMean:    mean,
		EnergyP10:     p10,
		EnergyP50:     p50,
		EnergyP90:     p90,
		LeftContacts:  st.LeftCount(),
		RightContacts: st.RightCount(),
		RewardsEarned: st.RewardsEarned,
		ContactRate:   rate,
		FinalLogRatio: st.CurrentLogRatio(),
		PathLength:    path,
	}
	if len(energies) > 0 {
		s.EnergyMin = floats.Min(energies)
		s.EnergyMax = floats.Max(energies)
	}
	if len(energies) > 1 {
		s.EnergyStd = stat.StdDev(energies, nil)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("steps", s.Steps),
		slog.Float64("final_energy", s.FinalEnergy),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Int("left_contacts", s.LeftContacts),
		slog.Int("right_contacts", s.RightContacts),
		slog.Int("rewards_earned", s.RewardsEarned),
		slog.Float64("contact_rate", s.ContactRate),
		slog.Float64("final_log_ratio", s.FinalLogRatio),
	)
}

// Percentile returns the p-th quantile of a sorted slice using gonum's
// linear interpolation of the empirical CDF. p is clamped to [0, 1].
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(min(max(p, 0), 1), stat.LinInterp, sorted, nil)
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}
