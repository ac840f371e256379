package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// logRatioLimit is where the log-ratio meter saturates (16:1).
const logRatioLimit = 4

// HUDData holds everything the side panel shows.
type HUDData struct {
	Tick          int
	Seed          int64
	Energy        float64
	InitialEnergy float64
	LeftContacts  int
	RightContacts int
	LogRatio      float64
	RewardsEarned int
	Contact       string // "left", "right", "both" or ""
	StepsPerSec   float32
	FPS           int32
	Paused        bool
}

// HUD renders the viewer's status panel.
type HUD struct {
	theme Theme
	x, y  int32
	width int32
}

// NewHUD creates a HUD anchored at (x, y).
func NewHUD(x, y, width int32) *HUD {
	return &HUD{theme: DefaultTheme(), x: x, y: y, width: width}
}

// Height is the panel height in pixels.
func (h *HUD) Height() int32 {
	return h.theme.RowHeight*12 + h.theme.Padding*2
}

// Draw renders the panel and returns the Y position below it.
func (h *HUD) Draw(d HUDData) int32 {
	col := Panel(h.theme, h.x, h.y, h.width, h.Height())

	col.Header("Lever Box")
	col.Row("Timestep", fmt.Sprintf("%d", d.Tick))
	col.Row("Seed", fmt.Sprintf("%d", d.Seed))
	col.Energy(d.Energy, d.InitialEnergy)
	col.Levers(d.LeftContacts, d.RightContacts)
	col.LogRatio(d.LogRatio, logRatioLimit)
	col.Row("Rewards", fmt.Sprintf("%d", d.RewardsEarned))
	col.Row("Contact", orDash(d.Contact))
	col.Row("Speed", fmt.Sprintf("%.0f steps/s | %d FPS", d.StepsPerSec, d.FPS))

	status := "Running"
	if d.Paused {
		status = "PAUSED"
	}
	col.Text(status, h.theme.Status)

	return h.y + h.Height()
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
