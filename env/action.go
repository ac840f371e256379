package env

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Action is one of the five discrete choices of the action space.
type Action int

const (
	ActionStay Action = iota
	ActionMove
	// Reserved actions are part of the action space but have no effect on
	// the agent; they behave exactly like ActionStay.
	ActionReserved2
	ActionReserved3
	ActionReserved4

	NumActions = 5
)

// ErrInvalidAction is returned by Step for actions outside the action space.
var ErrInvalidAction = errors.New("invalid action")

// Valid reports whether a is inside the action space.
func (a Action) Valid() bool {
	return a >= 0 && a < NumActions
}

// String returns a short name for logs.
func (a Action) String() string {
	switch a {
	case ActionStay:
		return "stay"
	case ActionMove:
		return "move"
	case ActionReserved2, ActionReserved3, ActionReserved4:
		return fmt.Sprintf("reserved%d", int(a))
	}
	return fmt.Sprintf("invalid(%d)", int(a))
}

// NewSource returns a seeded PCG source. Every random draw of a run goes
// through one source so a seed reproduces the run exactly.
func NewSource(seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
}

// ActionSampler draws actions from a categorical distribution over the
// action space.
type ActionSampler struct {
	dist distuv.Categorical
}

// NewActionSampler returns a sampler that picks every action with equal
// probability.
func NewActionSampler(src rand.Source) *ActionSampler {
	weights := make([]float64, NumActions)
	for i := range weights {
		weights[i] = 1
	}
	s, _ := NewWeightedActionSampler(weights, src)
	return s
}

// NewWeightedActionSampler returns a sampler with per-action weights.
// weights must have NumActions non-negative entries with a positive sum.
func NewWeightedActionSampler(weights []float64, src rand.Source) (*ActionSampler, error) {
	if len(weights) != NumActions {
		return nil, fmt.Errorf("need %d action weights, got %d", NumActions, len(weights))
	}
	var sum float64
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("action weight %d is negative: %g", i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, errors.New("action weights sum to zero")
	}
	return &ActionSampler{dist: distuv.NewCategorical(weights, src)}, nil
}

// Sample draws the next action.
func (s *ActionSampler) Sample() Action {
	return Action(s.dist.Rand())
}
