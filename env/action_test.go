package env

import "testing"

func TestActionValid(t *testing.T) {
	for a := Action(0); a < NumActions; a++ {
		if !a.Valid() {
			t.Errorf("%v should be valid", a)
		}
	}
	for _, a := range []Action{-1, NumActions, 100} {
		if a.Valid() {
			t.Errorf("%d should be invalid", int(a))
		}
	}
}

func TestActionSamplerCoversSpace(t *testing.T) {
	s := NewActionSampler(NewSource(1))
	counts := make([]int, NumActions)

	const n = 10000
	for i := 0; i < n; i++ {
		a := s.Sample()
		if !a.Valid() {
			t.Fatalf("sampled invalid action %d", a)
		}
		counts[a]++
	}

	for a, c := range counts {
		// each action expects n/5 = 2000 draws
		if c < 1700 || c > 2300 {
			t.Errorf("action %d drawn %d times, expected about %d", a, c, n/NumActions)
		}
	}
}

func TestWeightedActionSampler(t *testing.T) {
	s, err := NewWeightedActionSampler([]float64{0, 1, 0, 0, 0}, NewSource(2))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if a := s.Sample(); a != ActionMove {
			t.Fatalf("sampled %v, want move", a)
		}
	}
}

func TestWeightedActionSamplerRejectsBadWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
	}{
		{"too few", []float64{1, 1}},
		{"negative", []float64{1, -1, 1, 1, 1}},
		{"all zero", []float64{0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWeightedActionSampler(tt.weights, NewSource(3)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestActionString(t *testing.T) {
	if ActionStay.String() != "stay" || ActionMove.String() != "move" {
		t.Error("unexpected names")
	}
	if Action(9).String() != "invalid(9)" {
		t.Errorf("got %q", Action(9).String())
	}
}
