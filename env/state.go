package env

import (
	"math"
	"slices"

	"github.com/pthm-cable/leverbox/components"
)

// Trail holds the three 2D projections of every visited position.
type Trail struct {
	XY, XZ, YZ []components.Point
}

// Len returns the number of recorded positions.
func (t Trail) Len() int {
	return len(t.XY)
}

func (t *Trail) add(p components.Vec3) {
	t.XY = append(t.XY, components.Point{X: p.X, Y: p.Y})
	t.XZ = append(t.XZ, components.Point{X: p.X, Y: p.Z})
	t.YZ = append(t.YZ, components.Point{X: p.Y, Y: p.Z})
}

// AgentState is everything the environment tracks about the agent.
//
// LeftContacts, RightContacts, LogRatio and EnergyHistory start with one
// sentinel entry (0, 0, 0 and the initial energy) and gain one entry per
// step. Trail has no sentinel.
type AgentState struct {
	Position      components.Vec3
	Energy        float64
	LeftContacts  []int
	RightContacts []int
	LogRatio      []float64
	EnergyHistory []float64
	Trail         Trail
	RewardsEarned int
}

func newAgentState(initialEnergy float64) AgentState {
	return AgentState{
		Energy:        initialEnergy,
		LeftContacts:  []int{0},
		RightContacts: []int{0},
		LogRatio:      []float64{0},
		EnergyHistory: []float64{initialEnergy},
	}
}

// Steps returns how many steps have been recorded.
func (s *AgentState) Steps() int {
	return len(s.LeftContacts) - 1
}

// LeftCount returns the current cumulative left lever count.
func (s *AgentState) LeftCount() int {
	return s.LeftContacts[len(s.LeftContacts)-1]
}

// RightCount returns the current cumulative right lever count.
func (s *AgentState) RightCount() int {
	return s.RightContacts[len(s.RightContacts)-1]
}

// CurrentLogRatio returns the latest log-ratio entry.
func (s *AgentState) CurrentLogRatio() float64 {
	return s.LogRatio[len(s.LogRatio)-1]
}

// StepLeft returns the left counter after each step, without the
// sentinel. Its length is Steps(); the same holds for the other Step*
// views.
func (s *AgentState) StepLeft() []int {
	return s.LeftContacts[1:]
}

// StepRight returns the right counter after each step.
func (s *AgentState) StepRight() []int {
	return s.RightContacts[1:]
}

// StepLogRatio returns the log-ratio after each step.
func (s *AgentState) StepLogRatio() []float64 {
	return s.LogRatio[1:]
}

// StepEnergy returns the energy after each step.
func (s *AgentState) StepEnergy() []float64 {
	return s.EnergyHistory[1:]
}

// compact drops all but the last keep steps of history. The entry before
// the first kept step becomes the new sentinel, so counters, energy and
// log-ratio stay continuous. Copies release the dropped backing arrays.
func (s *AgentState) compact(keep int) {
	keep = max(keep, 0)
	drop := s.Steps() - keep
	if drop <= 0 {
		return
	}
	s.LeftContacts = slices.Clone(s.LeftContacts[drop:])
	s.RightContacts = slices.Clone(s.RightContacts[drop:])
	s.LogRatio = slices.Clone(s.LogRatio[drop:])
	s.EnergyHistory = slices.Clone(s.EnergyHistory[drop:])
	if n := len(s.Trail.XY) - keep; n > 0 {
		s.Trail = Trail{
			XY: slices.Clone(s.Trail.XY[n:]),
			XZ: slices.Clone(s.Trail.XZ[n:]),
			YZ: slices.Clone(s.Trail.YZ[n:]),
		}
	}
}

// Clone returns a deep copy.
func (s *AgentState) Clone() AgentState {
	return AgentState{
		Position:      s.Position,
		Energy:        s.Energy,
		LeftContacts:  slices.Clone(s.LeftContacts),
		RightContacts: slices.Clone(s.RightContacts),
		LogRatio:      slices.Clone(s.LogRatio),
		EnergyHistory: slices.Clone(s.EnergyHistory),
		Trail: Trail{
			XY: slices.Clone(s.Trail.XY),
			XZ: slices.Clone(s.Trail.XZ),
			YZ: slices.Clone(s.Trail.YZ),
		},
		RewardsEarned: s.RewardsEarned,
	}
}

// LogRatio returns log2(max(left,1) / max(right,1)).
func LogRatio(left, right int) float64 {
	return math.Log2(float64(max(left, 1)) / float64(max(right, 1)))
}
