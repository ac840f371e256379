// Package viewer shows a run live in a raylib window.
package viewer

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/leverbox/arena"
	"github.com/pthm-cable/leverbox/camera"
	"github.com/pthm-cable/leverbox/components"
	"github.com/pthm-cable/leverbox/config"
	"github.com/pthm-cable/leverbox/env"
	"github.com/pthm-cable/leverbox/runner"
	"github.com/pthm-cable/leverbox/ui"
)

// Screen layout
const (
	ScreenWidth  = 1100
	ScreenHeight = 760
	panelWidth   = 320
	margin       = 20
	trailLimit   = 400 // trail points drawn
)

const controlsHelp = "[Space] pause  [N] step  [R] reset  [Wheel/+/-] zoom  [Arrows] pan  [Home] view"

// Options configures the viewer.
type Options struct {
	Seed        int64
	StepsPerSec float32
	MaxSteps    int // 0 = unlimited
}

// Viewer owns the window state and the run it displays.
type Viewer struct {
	cfg  *config.Config
	opts Options

	run      *runner.Runner
	fixtures []components.Fixture
	levers   [2]components.Box

	viewport *camera.Viewport
	hud      *ui.HUD
	pacer    runner.Pacer
	paused   bool
	contact  string
}

// New creates a viewer over a fresh run. The window is not opened.
func New(cfg *config.Config, opts Options) (*Viewer, error) {
	if opts.StepsPerSec <= 0 {
		opts.StepsPerSec = 10
	}
	v := &Viewer{
		cfg:  cfg,
		opts: opts,
		hud:  ui.NewHUD(ScreenWidth-panelWidth-margin, margin, panelWidth),
	}
	if err := v.reset(); err != nil {
		return nil, err
	}
	size := v.run.Scene().Size()
	side := float64(ScreenHeight - 2*margin)
	v.viewport = camera.New(margin, margin, side, side, 0, 0, size.X, size.Y)
	v.viewport.Uniform = true
	return v, nil
}

func (v *Viewer) reset() error {
	// The viewer never persists, so output dirs stay empty.
	r, err := runner.New(v.cfg, runner.Options{
		Seed:         v.opts.Seed,
		Steps:        v.opts.MaxSteps,
		HistoryLimit: trailLimit,
	})
	if err != nil {
		return fmt.Errorf("viewer run: %w", err)
	}
	if v.run != nil {
		v.run.Close()
	}
	v.run = r
	v.fixtures = r.Scene().Fixtures()
	v.levers[0], v.levers[1] = r.Scene().Levers()
	v.pacer = runner.Pacer{Rate: float64(v.opts.StepsPerSec)}
	v.contact = ""
	slog.Info("viewer run started", "seed", r.Seed())
	return nil
}

// Update handles input and advances the run.
func (v *Viewer) Update() {
	v.handleInput()
	v.run.Perf().RecordFrame()

	if v.paused {
		return
	}
	v.pacer.Rate = float64(v.opts.StepsPerSec)
	for range v.pacer.Advance(float64(rl.GetFrameTime())) {
		if !v.step() {
			break
		}
	}
}

// step advances one timestep unless MaxSteps is reached.
func (v *Viewer) step() bool {
	if v.opts.MaxSteps > 0 && v.run.Tick() >= v.opts.MaxSteps {
		v.paused = true
		return false
	}
	if _, err := v.run.Step(); err != nil {
		slog.Error("step failed", "error", err)
		v.paused = true
		return false
	}
	v.contact = contactLabel(v.run.LastContact())
	return true
}

func (v *Viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyN) && v.paused {
		v.step()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := v.reset(); err != nil {
			slog.Error("reset failed", "error", err)
		}
	}

	vp := v.viewport
	panSpeed := 8.0 / vp.Zoom
	if rl.IsKeyDown(rl.KeyRight) {
		vp.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		vp.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		vp.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		vp.Pan(0, -panSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		vp.ZoomBy(1.0 + float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		vp.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		vp.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		vp.Reset()
	}
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.RayWhite)

	v.drawArena()

	st := v.run.Env().View()
	bottom := v.hud.Draw(ui.HUDData{
		Tick:          v.run.Tick(),
		Seed:          v.run.Seed(),
		Energy:        st.Energy,
		InitialEnergy: v.cfg.Energy.Initial,
		LeftContacts:  st.LeftCount(),
		RightContacts: st.RightCount(),
		LogRatio:      st.CurrentLogRatio(),
		RewardsEarned: st.RewardsEarned,
		Contact:       v.contact,
		StepsPerSec:   v.opts.StepsPerSec,
		FPS:           rl.GetFPS(),
		Paused:        v.paused,
	})
	v.drawControls(float32(ScreenWidth-panelWidth-margin), float32(bottom+margin))
	v.hud.DrawControls(ScreenHeight, controlsHelp)
}

func (v *Viewer) drawControls(x, y float32) {
	label := "Pause"
	if v.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 100, Height: 30}, label) {
		v.paused = !v.paused
	}
	if gui.Button(rl.Rectangle{X: x + 110, Y: y, Width: 100, Height: 30}, "Step") {
		v.paused = true
		v.step()
	}
	if gui.Button(rl.Rectangle{X: x + 220, Y: y, Width: 100, Height: 30}, "Reset") {
		if err := v.reset(); err != nil {
			slog.Error("reset failed", "error", err)
		}
	}

	y += 50
	rl.DrawText("Steps per second", int32(x), int32(y), 14, rl.Gray)
	y += 18
	v.opts.StepsPerSec = gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: y, Width: panelWidth - 80, Height: 20},
		"1", "120",
		v.opts.StepsPerSec, 1, 120,
	)
	rl.DrawText(fmt.Sprintf("%.0f", v.opts.StepsPerSec), int32(x+panelWidth-50), int32(y+2), 16, rl.DarkGray)
}

func (v *Viewer) drawArena() {
	vp := v.viewport
	size := v.run.Scene().Size()

	// Floor and the wall margin the agent cannot cross
	v.fillBox(components.BoxAt(components.Point{X: size.X / 2, Y: size.Y / 2}, components.Point{X: size.X, Y: size.Y}),
		rl.Color{R: 225, G: 225, B: 225, A: 255})
	m := v.cfg.Arena.WallMargin
	v.outlineBox(components.BoxAt(components.Point{X: size.X / 2, Y: size.Y / 2}, components.Point{X: size.X - 2*m, Y: size.Y - 2*m}),
		rl.Color{R: 190, G: 190, B: 190, A: 255})

	for _, f := range v.fixtures {
		switch {
		case f.Kind.IsLever():
			zone := v.levers[0]
			if f.Kind == components.FixtureRightLever {
				zone = v.levers[1]
			}
			v.fillBox(zone, toRL(f.Color, 255))
		case f.Kind == components.FixtureHopper:
			v.fillBox(components.BoxAt(components.Point{X: f.Center.X, Y: f.Center.Y}, components.Point{X: 0.02, Y: f.Size.Y}), toRL(f.Color, 255))
		case f.Kind == components.FixtureSignalLight:
			x, y := vp.WorldToScreen(f.Center.X, f.Center.Y)
			rl.DrawCircle(int32(x), int32(y), 8, toRL(f.Color, 255))
		}
	}

	// Trail
	trail := v.run.Env().View().Trail.XY
	if len(trail) > trailLimit {
		trail = trail[len(trail)-trailLimit:]
	}
	for i := 1; i < len(trail); i++ {
		x0, y0 := vp.WorldToScreen(trail[i-1].X, trail[i-1].Y)
		x1, y1 := vp.WorldToScreen(trail[i].X, trail[i].Y)
		rl.DrawLineV(rl.Vector2{X: float32(x0), Y: float32(y0)}, rl.Vector2{X: float32(x1), Y: float32(y1)}, toRL(components.ColorTrail, 120))
	}

	// Agent body and collision footprint
	pos := v.run.Env().Position()
	body := v.cfg.Agent.BodySize
	v.fillBox(components.Square(components.Point{X: pos.X, Y: pos.Y}, body/2), toRL(components.ColorAgent, 200))
	footprint := env.Footprint(pos, v.cfg.Agent.FootprintHalf)
	outline := rl.DarkGray
	if v.contact != "" {
		outline = rl.Orange
	}
	v.outlineBox(footprint, outline)
}

func (v *Viewer) screenRect(b components.Box) rl.Rectangle {
	x0, y0 := v.viewport.WorldToScreen(b.Min.X, b.Max.Y)
	x1, y1 := v.viewport.WorldToScreen(b.Max.X, b.Min.Y)
	return rl.Rectangle{X: float32(x0), Y: float32(y0), Width: float32(x1 - x0), Height: float32(y1 - y0)}
}

func (v *Viewer) fillBox(b components.Box, c rl.Color) {
	rl.DrawRectangleRec(v.screenRect(b), c)
}

func (v *Viewer) outlineBox(b components.Box, c rl.Color) {
	rl.DrawRectangleLinesEx(v.screenRect(b), 2, c)
}

func contactLabel(c arena.Contact) string {
	switch {
	case c.Left && c.Right:
		return "both"
	case c.Left:
		return "left"
	case c.Right:
		return "right"
	}
	return ""
}

func toRL(c components.RGB, a uint8) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: a}
}

// Unload releases the run.
func (v *Viewer) Unload() {
	v.run.Close()
	slog.Info("viewer closed", "timestep", v.run.Tick(), "perf", v.run.Perf().Stats())
}

// Run opens the window and loops until it is closed.
func Run(cfg *config.Config, opts Options) error {
	rl.InitWindow(ScreenWidth, ScreenHeight, "Lever Box")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	v, err := New(cfg, opts)
	if err != nil {
		return err
	}
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()
	}
	return nil
}
