package env

import "github.com/pthm-cable/leverbox/components"

// FrameSnapshot is everything a renderer needs to draw one frame. It owns
// its slices, so later steps never change a snapshot already taken.
type FrameSnapshot struct {
	Timestep      int
	Position      components.Vec3
	ArenaSize     components.Vec3
	Energy        float64
	EnergyHistory []float64
	LeftContacts  []int
	RightContacts []int
	LogRatio      []float64
	Trail         Trail
	RewardsEarned int
}

// Snapshot captures the current state for rendering frame timestep.
func (e *Environment) Snapshot(timestep int) FrameSnapshot {
	st := e.state.Clone()
	return FrameSnapshot{
		Timestep:      timestep,
		Position:      st.Position,
		ArenaSize:     e.params.Size,
		Energy:        st.Energy,
		EnergyHistory: st.EnergyHistory,
		LeftContacts:  st.LeftContacts,
		RightContacts: st.RightContacts,
		LogRatio:      st.LogRatio,
		Trail:         st.Trail,
		RewardsEarned: st.RewardsEarned,
	}
}

// StepRecord is the per-step row handed to the recorder.
type StepRecord struct {
	Timestep           int        `json:"timestep"`
	Position           [3]float64 `json:"position"`
	Reward             float64    `json:"reward"`
	Energy             float64    `json:"energy"`
	LeftLeverContacts  int        `json:"left_lever_contacts"`
	RightLeverContacts int        `json:"right_lever_contacts"`
}

// Record builds the StepRecord for the step that produced res.
func (e *Environment) Record(timestep int, res StepResult) StepRecord {
	return StepRecord{
		Timestep:           timestep,
		Position:           res.Observation.Array(),
		Reward:             res.Reward,
		Energy:             e.state.Energy,
		LeftLeverContacts:  e.state.LeftCount(),
		RightLeverContacts: e.state.RightCount(),
	}
}
