package renderer

import (
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/pthm-cable/leverbox/camera"
	"github.com/pthm-cable/leverbox/components"
	"github.com/pthm-cable/leverbox/env"
)

// numTicks is the number of intervals on each plot axis.
const numTicks = 5

// series is one line on a plot.
type series struct {
	label string
	xs    []float64
	ys    []float64
	color color.Color
}

// plot describes one 2D line chart.
type plot struct {
	xLabel, yLabel string
	xMin, xMax     float64
	yMin, yMax     float64
	lines          []series
	legend         bool
	marker         bool // dot on the last point of the first series
}

// indexed returns 0..n-1 as floats.
func indexed(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

func ints(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// timeRange returns the x range for a series of n samples.
func timeRange(n int) (float64, float64) {
	return 0, math.Max(float64(n-1), 1)
}

func seriesRange(ys []float64) (lo, hi float64) {
	if len(ys) == 0 {
		return 0, 1
	}
	lo, hi = ys[0], ys[0]
	for _, y := range ys[1:] {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	return lo, hi
}

func (p plot) draw(dc *gg.Context, area rect) {
	vp := camera.New(area.X, area.Y, area.W, area.H, p.xMin, p.yMin, p.xMax, p.yMax)

	// Grid and ticks
	dc.SetLineWidth(1)
	for i := 0; i <= numTicks; i++ {
		f := float64(i) / numTicks
		wx := vp.MinX + f*(vp.MaxX-vp.MinX)
		wy := vp.MinY + f*(vp.MaxY-vp.MinY)
		sx, _ := vp.WorldToScreen(wx, vp.MinY)
		_, sy := vp.WorldToScreen(vp.MinX, wy)

		dc.SetColor(colorGridLine)
		dc.DrawLine(sx, area.Y, sx, area.Y+area.H)
		dc.DrawLine(area.X, sy, area.X+area.W, sy)
		dc.Stroke()

		dc.SetColor(colorAxis)
		dc.DrawStringAnchored(tickLabel(wx), sx, area.Y+area.H+4, 0.5, 1)
		dc.DrawStringAnchored(tickLabel(wy), area.X-4, sy, 1, 0.5)
	}

	// Frame
	dc.SetColor(colorAxis)
	dc.DrawRectangle(area.X, area.Y, area.W, area.H)
	dc.Stroke()

	// Axis labels
	dc.DrawStringAnchored(p.xLabel, area.X+area.W/2, area.Y+area.H+22, 0.5, 1)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, area.X-42, area.Y+area.H/2)
	dc.DrawStringAnchored(p.yLabel, area.X-42, area.Y+area.H/2, 0.5, 0.5)
	dc.Pop()

	// Series, clipped to the plot area
	dc.Push()
	dc.DrawRectangle(area.X, area.Y, area.W, area.H)
	dc.Clip()
	dc.SetLineWidth(1.5)
	for _, s := range p.lines {
		n := min(len(s.xs), len(s.ys))
		if n == 0 {
			continue
		}
		dc.NewSubPath()
		for i := 0; i < n; i++ {
			x, y := vp.WorldToScreen(s.xs[i], s.ys[i])
			dc.LineTo(x, y)
		}
		dc.SetColor(s.color)
		dc.Stroke()
	}
	if p.marker && len(p.lines) > 0 {
		s := p.lines[0]
		if n := min(len(s.xs), len(s.ys)); n > 0 {
			x, y := vp.WorldToScreen(s.xs[n-1], s.ys[n-1])
			dc.DrawCircle(x, y, 4)
			dc.SetColor(s.color)
			dc.Fill()
		}
	}
	dc.ResetClip()
	dc.Pop()

	if p.legend {
		for i, s := range p.lines {
			y := area.Y + 12 + float64(i)*16
			dc.SetColor(s.color)
			dc.DrawLine(area.X+8, y, area.X+28, y)
			dc.Stroke()
			dc.SetColor(colorAxis)
			dc.DrawStringAnchored(s.label, area.X+34, y, 0, 0.5)
		}
	}
}

func tickLabel(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e6 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// drawTrajectory plots the path on the floor plane.
func drawTrajectory(dc *gg.Context, area rect, snap env.FrameSnapshot) {
	xs := make([]float64, len(snap.Trail.XY))
	ys := make([]float64, len(snap.Trail.XY))
	for i, p := range snap.Trail.XY {
		xs[i], ys[i] = p.X, p.Y
	}
	plot{
		xLabel: "X Coordinate",
		yLabel: "Y Coordinate",
		xMax:   snap.ArenaSize.X,
		yMax:   snap.ArenaSize.Y,
		lines:  []series{{xs: xs, ys: ys, color: components.ColorTrail}},
		marker: true,
	}.draw(dc, area)
}

// drawCoordinates plots x and y against time.
func drawCoordinates(dc *gg.Context, area rect, snap env.FrameSnapshot) {
	n := snap.Trail.Len()
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range n {
		xs[i] = snap.Trail.XZ[i].X
		ys[i] = snap.Trail.YZ[i].X
	}
	t := indexed(n)
	tMin, tMax := timeRange(n)
	plot{
		xLabel: "Time Step",
		yLabel: "Coordinate",
		xMin:   tMin,
		xMax:   tMax,
		yMax:   math.Max(snap.ArenaSize.X, snap.ArenaSize.Y),
		lines: []series{
			{label: "X Location", xs: t, ys: xs, color: components.ColorLeftSeries},
			{label: "Y Location", xs: t, ys: ys, color: components.ColorRightSeries},
		},
		legend: true,
	}.draw(dc, area)
}

// drawContacts plots the cumulative lever counts.
func drawContacts(dc *gg.Context, area rect, snap env.FrameSnapshot) {
	left, right := ints(snap.LeftContacts), ints(snap.RightContacts)
	_, hiL := seriesRange(left)
	_, hiR := seriesRange(right)
	tMin, tMax := timeRange(len(left))
	t := indexed(len(left))
	plot{
		xLabel: "Time Step",
		yLabel: "Cumulative Responses",
		xMin:   tMin,
		xMax:   tMax,
		yMax:   math.Max(math.Max(hiL, hiR), 1),
		lines: []series{
			{label: "Left Lever", xs: t, ys: left, color: components.ColorLeftSeries},
			{label: "Right Lever", xs: t, ys: right, color: components.ColorRightSeries},
		},
		legend: true,
	}.draw(dc, area)
}

// drawLogRatio plots log2(left/right) over time.
func drawLogRatio(dc *gg.Context, area rect, snap env.FrameSnapshot) {
	lo, hi := seriesRange(snap.LogRatio)
	tMin, tMax := timeRange(len(snap.LogRatio))
	plot{
		xLabel: "Time Step",
		yLabel: "Log2 Ratio (Left/Right Lever)",
		xMin:   tMin,
		xMax:   tMax,
		yMin:   lo,
		yMax:   hi,
		lines:  []series{{xs: indexed(len(snap.LogRatio)), ys: snap.LogRatio, color: colorAxis}},
	}.draw(dc, area)
}

// drawEnergy plots the energy reserve with 10% headroom.
func drawEnergy(dc *gg.Context, area rect, snap env.FrameSnapshot) {
	lo, hi := seriesRange(snap.EnergyHistory)
	tMin, tMax := timeRange(len(snap.EnergyHistory))
	plot{
		xLabel: "Time Step",
		yLabel: "Energy Reserves Remaining",
		xMin:   tMin,
		xMax:   tMax,
		yMin:   math.Min(0, lo),
		yMax:   hi * 1.1,
		lines:  []series{{xs: indexed(len(snap.EnergyHistory)), ys: snap.EnergyHistory, color: colorAxis}},
	}.draw(dc, area)
}
