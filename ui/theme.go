// Package ui draws the viewer's side panel: themed rows, meters and the HUD.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/leverbox/components"
)

// Theme holds panel styling.
type Theme struct {
	PanelBg     rl.Color
	PanelBorder rl.Color
	Header      rl.Color
	Label       rl.Color
	Value       rl.Color
	Status      rl.Color

	Track      rl.Color // empty part of a meter
	EnergyHigh rl.Color
	EnergyMid  rl.Color
	EnergyLow  rl.Color
	EnergyDebt rl.Color // energy below zero
	LeftLever  rl.Color
	RightLever rl.Color

	Padding    int32
	RowHeight  int32
	LabelWidth int32
	ValueWidth int32 // space right of a meter for its number
	MeterH     int32
	FontSize   int32
	HeaderSize int32
}

// DefaultTheme returns the dark panel theme. Lever colours follow the
// frame renderer's series colours, lightened where black would vanish.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:     rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder: rl.Color{R: 60, G: 70, B: 80, A: 255},
		Header:      rl.Yellow,
		Label:       rl.LightGray,
		Value:       rl.RayWhite,
		Status:      rl.Yellow,

		Track:      rl.Color{R: 40, G: 40, B: 40, A: 255},
		EnergyHigh: rl.Color{R: 100, G: 200, B: 100, A: 255},
		EnergyMid:  rl.Color{R: 200, G: 180, B: 100, A: 255},
		EnergyLow:  rl.Color{R: 200, G: 100, B: 100, A: 255},
		EnergyDebt: rl.Color{R: 140, G: 40, B: 160, A: 255},
		LeftLever:  rgb(components.ColorLeftSeries),
		RightLever: rl.Color{R: 200, G: 200, B: 200, A: 255},

		Padding:    12,
		RowHeight:  20,
		LabelWidth: 110,
		ValueWidth: 60,
		MeterH:     12,
		FontSize:   14,
		HeaderSize: 18,
	}
}

func rgb(c components.RGB) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
}
