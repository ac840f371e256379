package runner

import "testing"

func TestPacer(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		dts   []float64
		total int
	}{
		{"one per frame", 60, []float64{1.0 / 64, 1.0 / 64, 1.0 / 64, 1.0 / 64}, 3},
		{"carries fraction", 10, []float64{0.05, 0.05, 0.05, 0.05}, 2},
		{"stopped", 0, []float64{1, 1}, 0},
		{"negative dt", 10, []float64{-1}, 0},
		{"capped", 1000, []float64{1}, maxCatchUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Pacer{Rate: tt.rate}
			total := 0
			for _, dt := range tt.dts {
				total += p.Advance(dt)
			}
			if total != tt.total {
				t.Errorf("total steps = %d, want %d", total, tt.total)
			}
		})
	}
}

func TestPacerReset(t *testing.T) {
	p := Pacer{Rate: 4}
	if n := p.Advance(0.125); n != 0 {
		t.Fatalf("Advance = %d, want 0", n)
	}
	p.Reset()
	if n := p.Advance(0.125); n != 0 {
		t.Errorf("Advance after Reset = %d, want 0", n)
	}
}
