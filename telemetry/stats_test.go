package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/leverbox/components"
	"github.com/pthm-cable/leverbox/env"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", []float64{}, 0.5, 0},
		{"single", []float64{5}, 0.5, 5},
		{"p0", []float64{1, 2, 3, 4, 5}, 0, 1},
		{"p100", []float64{1, 2, 3, 4, 5}, 1, 5},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 2.5},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2},
		{"p10", []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 0.1, 1},
		{"p90", []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 0.9, 89},
		{"p below range", []float64{1, 2, 3}, -0.5, 1},
		{"p above range", []float64{1, 2, 3}, 1.5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeEnergyStats(t *testing.T) {
	mean, p10, p50, p90 := ComputeEnergyStats([]float64{200, 190, 210, 180, 220})
	if math.Abs(mean-200) > 1e-9 {
		t.Errorf("mean = %v, want 200", mean)
	}
	// linear interpolation of the empirical CDF over 180..220
	if p10 != 180 || math.Abs(p50-195) > 1e-9 || math.Abs(p90-215) > 1e-9 {
		t.Errorf("p10/p50/p90 = %v/%v/%v, want 180/195/215", p10, p50, p90)
	}
	if p10 >= p50 || p90 <= p50 {
		t.Errorf("percentiles not ordered: p10=%v p50=%v p90=%v", p10, p50, p90)
	}

	mean, _, _, _ = ComputeEnergyStats(nil)
	if mean != 0 {
		t.Errorf("empty mean = %v, want 0", mean)
	}
}

func TestSummarize(t *testing.T) {
	st := &env.AgentState{
		Energy:        204,
		LeftContacts:  []int{0, 0, 1, 1},
		RightContacts: []int{0, 0, 0, 1},
		LogRatio:      []float64{0, 0, 0, 0},
		EnergyHistory: []float64{200, 199.75, 204.5, 209.25},
		Trail: env.Trail{
			XY: []components.Point{{X: 0, Y: 0}, {X: 0.3, Y: 0.4}, {X: 0.3, Y: 0.4}},
		},
		RewardsEarned: 2,
	}

	s := Summarize(st)

	if s.Steps != 3 {
		t.Errorf("Steps = %d, want 3", s.Steps)
	}
	if s.LeftContacts != 1 || s.RightContacts != 1 {
		t.Errorf("contacts = %d/%d, want 1/1", s.LeftContacts, s.RightContacts)
	}
	if s.RewardsEarned != 2 {
		t.Errorf("RewardsEarned = %d, want 2", s.RewardsEarned)
	}
	if math.Abs(s.ContactRate-2.0/3.0) > 1e-9 {
		t.Errorf("ContactRate = %v, want 2/3", s.ContactRate)
	}
	if s.EnergyMin != 199.75 || s.EnergyMax != 209.25 {
		t.Errorf("energy range = [%v, %v], want [199.75, 209.25]", s.EnergyMin, s.EnergyMax)
	}
	if math.Abs(s.EnergyMean-204.5) > 1e-9 {
		t.Errorf("EnergyMean = %v, want 204.5", s.EnergyMean)
	}
	if s.EnergyStd <= 0 {
		t.Errorf("EnergyStd = %v, want > 0", s.EnergyStd)
	}
	if math.Abs(s.PathLength-0.5) > 1e-9 {
		t.Errorf("PathLength = %v, want 0.5", s.PathLength)
	}
	if s.FinalEnergy != 204 {
		t.Errorf("FinalEnergy = %v, want 204", s.FinalEnergy)
	}
}

func TestSummarizeNoSteps(t *testing.T) {
	st := &env.AgentState{
		Energy:        200,
		LeftContacts:  []int{0},
		RightContacts: []int{0},
		LogRatio:      []float64{0},
		EnergyHistory: []float64{200},
	}

	s := Summarize(st)
	if s.Steps != 0 {
		t.Errorf("Steps = %d, want 0", s.Steps)
	}
	if s.EnergyMean != 200 || s.EnergyMin != 200 || s.EnergyMax != 200 {
		t.Errorf("energy stats = %+v, want all 200", s)
	}
	if s.ContactRate != 0 {
		t.Errorf("ContactRate = %v, want 0", s.ContactRate)
	}
}
