// Package env implements the lever box environment: a rat doing a random
// walk on the arena floor, two lever zones it can bump into, and an energy
// budget that drains every step and refills on contact.
//
// An Environment is not safe for concurrent use. Use one instance per run.
package env

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/leverbox/arena"
	"github.com/pthm-cable/leverbox/components"
)

// Zones reports which levers a footprint touches.
type Zones interface {
	Contacts(footprint components.Box) arena.Contact
}

// Status is the coarse lifecycle state of an environment.
type Status uint8

const (
	StatusReady   Status = iota // constructed or just reset
	StatusRunning               // at least one step since the last reset
)

// StepResult is what Step hands back to the driver.
type StepResult struct {
	Observation components.Vec3
	Reward      float64 // always 0; lever contacts are counted in RewardsEarned
	Terminated  bool    // always false; the driver bounds the episode
	Info        map[string]any
	Contact     arena.Contact
}

// Environment is the per-step state machine.
type Environment struct {
	params Params
	zones  Zones

	boundsX, boundsY r1.Interval

	angle    distuv.Uniform
	distance distuv.Uniform
	startX   distuv.Uniform
	startY   distuv.Uniform

	state  AgentState
	status Status
}

// New creates an environment drawing all randomness from src and places
// the agent with Reset.
func New(params Params, zones Zones, src rand.Source) *Environment {
	e := &Environment{
		params: params,
		zones:  zones,
		boundsX: r1.Interval{
			Min: params.WallMargin,
			Max: params.Size.X - params.WallMargin,
		},
		boundsY: r1.Interval{
			Min: params.WallMargin,
			Max: params.Size.Y - params.WallMargin,
		},
		angle:    distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src},
		distance: distuv.Uniform{Min: 0, Max: params.StepSize, Src: src},
		startX:   distuv.Uniform{Min: 0, Max: params.Size.X - params.ResetMargin, Src: src},
		startY:   distuv.Uniform{Min: 0, Max: params.Size.Y - params.ResetMargin, Src: src},
		state:    newAgentState(params.InitialEnergy),
	}
	e.Reset()
	return e
}

// Reset places the agent at a random floor position and returns it.
// Energy, counters and histories carry over unless Params.FullReset is set.
func (e *Environment) Reset() components.Vec3 {
	if e.params.FullReset {
		e.state = newAgentState(e.params.InitialEnergy)
	}
	e.state.Position = components.Vec3{
		X: e.startX.Rand(),
		Y: e.startY.Rand(),
		Z: e.params.FloorZ,
	}
	e.status = StatusReady
	return e.state.Position
}

// Step applies one action and records its outcome.
func (e *Environment) Step(action Action) (StepResult, error) {
	if !action.Valid() {
		return StepResult{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(action))
	}

	if action == ActionMove {
		e.move()
	}

	contact := e.zones.Contacts(Footprint(e.state.Position, e.params.FootprintHalf))
	e.state.RewardsEarned += contact.Count()

	// A step touching both levers counts for the left lever only.
	left, right := e.state.LeftCount(), e.state.RightCount()
	switch {
	case contact.Left:
		left++
	case contact.Right:
		right++
	}
	e.state.LeftContacts = append(e.state.LeftContacts, left)
	e.state.RightContacts = append(e.state.RightContacts, right)
	e.state.LogRatio = append(e.state.LogRatio, LogRatio(left, right))

	e.state.Trail.add(e.state.Position)

	e.state.Energy -= e.params.EnergyDecay
	if contact.Any() {
		e.state.Energy += e.params.EnergyBonus
	}
	e.state.EnergyHistory = append(e.state.EnergyHistory, e.state.Energy)

	e.status = StatusRunning

	return StepResult{
		Observation: e.state.Position,
		Reward:      0,
		Terminated:  false,
		Info:        map[string]any{},
		Contact:     contact,
	}, nil
}

// move takes a random step of up to StepSize in a random direction and
// keeps x,y inside the walls.
func (e *Environment) move() {
	angle := e.angle.Rand()
	dist := e.distance.Rand()

	e.state.Position.X = clamp(e.state.Position.X+dist*math.Cos(angle), e.boundsX)
	e.state.Position.Y = clamp(e.state.Position.Y+dist*math.Sin(angle), e.boundsY)
}

func clamp(v float64, iv r1.Interval) float64 {
	return math.Min(math.Max(v, iv.Min), iv.Max)
}

// Footprint returns the collision square of an agent at pos.
func Footprint(pos components.Vec3, half float64) components.Box {
	return components.Square(components.Point{X: pos.X, Y: pos.Y}, half)
}

// Contact reports whether footprint overlaps lever.
func Contact(footprint, lever components.Box) bool {
	return footprint.Overlaps(lever)
}

// Position returns the agent's current position.
func (e *Environment) Position() components.Vec3 {
	return e.state.Position
}

// Energy returns the agent's current energy.
func (e *Environment) Energy() float64 {
	return e.state.Energy
}

// Status returns whether the environment has stepped since the last reset.
func (e *Environment) Status() Status {
	return e.status
}

// Params returns the constants the environment was built with.
func (e *Environment) Params() Params {
	return e.params
}

// State returns a deep copy of the agent state.
func (e *Environment) State() AgentState {
	return e.state.Clone()
}

// Compact keeps only the last keep steps of history, for long-lived
// displays that never persist the full run. Current position, energy,
// counters and RewardsEarned are unchanged; Steps() afterwards counts
// kept steps only.
func (e *Environment) Compact(keep int) {
	e.state.compact(keep)
}

// View returns the live agent state without copying. The returned pointer
// is only valid until the next Step or Reset and must not be modified.
func (e *Environment) View() *AgentState {
	return &e.state
}
