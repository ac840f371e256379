package env

import (
	"github.com/pthm-cable/leverbox/components"
	"github.com/pthm-cable/leverbox/config"
)

// Params are the fixed constants of one environment instance.
type Params struct {
	Size          components.Vec3 // arena extents; only X and Y bound movement
	WallMargin    float64         // x,y are clamped to [margin, size-margin] after a move
	ResetMargin   float64         // reset draws x,y from [0, size-margin)
	FloorZ        float64
	StepSize      float64 // upper bound of a random move
	FootprintHalf float64
	InitialEnergy float64
	EnergyDecay   float64
	EnergyBonus   float64

	// FullReset makes Reset clear energy, counters and histories as well
	// as the position.
	FullReset bool
}

// DefaultParams returns the reference constants.
func DefaultParams() Params {
	return Params{
		Size:          components.Vec3{X: 1.0, Y: 1.0, Z: 2.0},
		WallMargin:    0.1,
		ResetMargin:   0.1,
		FloorZ:        0.15,
		StepSize:      0.15,
		FootprintHalf: 0.1,
		InitialEnergy: 200,
		EnergyDecay:   0.25,
		EnergyBonus:   5,
	}
}

// ParamsFromConfig maps the loaded configuration onto Params.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Size:          components.Vec3{X: cfg.Arena.Width, Y: cfg.Arena.Depth, Z: cfg.Arena.Height},
		WallMargin:    cfg.Arena.WallMargin,
		ResetMargin:   cfg.Arena.WallMargin,
		FloorZ:        cfg.Agent.FloorZ,
		StepSize:      cfg.Agent.StepSize,
		FootprintHalf: cfg.Agent.FootprintHalf,
		InitialEnergy: cfg.Energy.Initial,
		EnergyDecay:   cfg.Energy.Decay,
		EnergyBonus:   cfg.Energy.Bonus,
		FullReset:     cfg.Episode.FullReset,
	}
}
