// Package renderer draws environment snapshots into PNG frames.
package renderer

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/pthm-cable/leverbox/components"
	"github.com/pthm-cable/leverbox/config"
	"github.com/pthm-cable/leverbox/env"
)

// Grid layout: three panels per row, two rows.
const (
	gridCols = 3
	gridRows = 2
)

var (
	colorBackground = color.White
	colorAxis       = color.Black
	colorGridLine   = color.Gray{Y: 225}
)

// Options configures a FrameRenderer.
type Options struct {
	Width, Height int
	Padding       float64 // pixels between a panel's cell and its plot area
	BodySize      float64 // edge of the agent cube in arena units
	Fixtures      []components.Fixture
}

// OptionsFromConfig builds renderer options from the loaded config and
// the scene's fixtures.
func OptionsFromConfig(cfg *config.Config, fixtures []components.Fixture) Options {
	return Options{
		Width:    cfg.Render.Width,
		Height:   cfg.Render.Height,
		Padding:  cfg.Render.PanelPadding,
		BodySize: cfg.Agent.BodySize,
		Fixtures: fixtures,
	}
}

// FrameRenderer draws one six-panel figure per snapshot. It holds only
// static scene data; everything that changes per frame comes in through
// the snapshot.
type FrameRenderer struct {
	opts Options
}

// NewFrameRenderer creates a renderer. Non-positive sizes fall back to 1800x960.
func NewFrameRenderer(opts Options) *FrameRenderer {
	if opts.Width <= 0 {
		opts.Width = 1800
	}
	if opts.Height <= 0 {
		opts.Height = 960
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	return &FrameRenderer{opts: opts}
}

// Size returns the frame dimensions in pixels.
func (r *FrameRenderer) Size() (w, h int) {
	return r.opts.Width, r.opts.Height
}

// rect is a pixel rectangle.
type rect struct {
	X, Y, W, H float64
}

// inset shrinks r by p on every side.
func (r rect) inset(p float64) rect {
	return rect{X: r.X + p, Y: r.Y + p, W: max(r.W-2*p, 1), H: max(r.H-2*p, 1)}
}

// cell returns the rectangle of grid cell (col, row).
func (r *FrameRenderer) cell(col, row int) rect {
	cw := float64(r.opts.Width) / gridCols
	ch := float64(r.opts.Height) / gridRows
	return rect{X: float64(col) * cw, Y: float64(row) * ch, W: cw, H: ch}
}

// Render draws snap and returns the finished frame.
func (r *FrameRenderer) Render(snap env.FrameSnapshot) image.Image {
	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.SetColor(colorBackground)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	pad := r.opts.Padding
	r.drawArena(dc, r.cell(0, 0).inset(pad/2), snap)
	drawTrajectory(dc, r.cell(1, 0).inset(pad), snap)
	drawCoordinates(dc, r.cell(2, 0).inset(pad), snap)
	drawContacts(dc, r.cell(0, 1).inset(pad), snap)
	drawLogRatio(dc, r.cell(1, 1).inset(pad), snap)
	drawEnergy(dc, r.cell(2, 1).inset(pad), snap)

	return dc.Image()
}
