package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Column lays out panel rows top to bottom. Each draw call advances
// the cursor by one row.
type Column struct {
	Theme Theme
	X, Y  int32
	Width int32
}

// Panel draws a panel background of the given height at the column's
// origin, inset by the theme padding, and returns a column for its
// contents.
func Panel(theme Theme, x, y, width, height int32) *Column {
	rl.DrawRectangle(x, y, width, height, theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, theme.PanelBorder)
	return &Column{
		Theme: theme,
		X:     x + theme.Padding,
		Y:     y + theme.Padding,
		Width: width - 2*theme.Padding,
	}
}

// Header draws a section title.
func (c *Column) Header(title string) {
	rl.DrawText(title, c.X, c.Y, c.Theme.HeaderSize, c.Theme.Header)
	c.Y += c.Theme.RowHeight + 4
}

// Row draws "label: value".
func (c *Column) Row(label, value string) {
	rl.DrawText(label+":", c.X, c.Y, c.Theme.FontSize, c.Theme.Label)
	rl.DrawText(value, c.X+c.Theme.LabelWidth, c.Y, c.Theme.FontSize, c.Theme.Value)
	c.Y += c.Theme.RowHeight
}

// Text draws a bare line in col.
func (c *Column) Text(s string, col rl.Color) {
	rl.DrawText(s, c.X, c.Y, c.Theme.FontSize, col)
	c.Y += c.Theme.RowHeight
}

// meterTrack returns the x and width of the bar area of a meter row.
func (c *Column) meterTrack() (int32, int32) {
	return c.X + c.Theme.LabelWidth, max(c.Width-c.Theme.LabelWidth-c.Theme.ValueWidth, 1)
}

func (c *Column) meterRow(label, value string, draw func(x, y, w, h int32)) {
	t := c.Theme
	x, w := c.meterTrack()
	rl.DrawText(label+":", c.X, c.Y, t.FontSize, t.Label)
	rl.DrawRectangle(x, c.Y+2, w, t.MeterH, t.Track)
	draw(x, c.Y+2, w, t.MeterH)
	rl.DrawText(value, x+w+5, c.Y, t.FontSize, t.Value)
	c.Y += t.RowHeight + 2
}

// Energy draws the reserve as a fraction of the starting energy.
// Negative reserves draw a full bar in the debt colour.
func (c *Column) Energy(energy, initial float64) {
	frac := fillFraction(energy, initial)
	col := energyColor(c.Theme, energy, frac)
	c.meterRow("Energy", fmt.Sprintf("%.2f", energy), func(x, y, w, h int32) {
		if energy < 0 {
			rl.DrawRectangle(x, y, w, h, col)
			return
		}
		rl.DrawRectangle(x, y, int32(float64(w)*frac), h, col)
	})
}

// Levers draws the left/right contact split as one two-colour bar.
func (c *Column) Levers(left, right int) {
	t := c.Theme
	share, ok := leftShare(left, right)
	c.meterRow("L | R", fmt.Sprintf("%d|%d", left, right), func(x, y, w, h int32) {
		if !ok {
			return
		}
		lw := int32(math.Round(float64(w) * share))
		rl.DrawRectangle(x, y, lw, h, t.LeftLever)
		rl.DrawRectangle(x+lw, y, w-lw, h, t.RightLever)
	})
}

// LogRatio draws log2(L/R) as a bar growing left or right from the
// centre, saturating at ±limit.
func (c *Column) LogRatio(value, limit float64) {
	t := c.Theme
	c.meterRow("Log2 L/R", fmt.Sprintf("%+.2f", value), func(x, y, w, h int32) {
		mid := x + w/2
		rl.DrawLine(mid, y, mid, y+h, rl.Gray)
		off, span := divergingSpan(value, limit, w)
		col := t.LeftLever
		if value < 0 {
			col = t.RightLever
		}
		rl.DrawRectangle(mid+off, y, span, h, col)
	})
}

// fillFraction is cur/full clamped to [0,1]; 0 when full is not positive.
func fillFraction(cur, full float64) float64 {
	if full <= 0 {
		return 0
	}
	return math.Min(math.Max(cur/full, 0), 1)
}

func energyColor(t Theme, energy, frac float64) rl.Color {
	switch {
	case energy < 0:
		return t.EnergyDebt
	case frac < 0.3:
		return t.EnergyLow
	case frac < 0.6:
		return t.EnergyMid
	}
	return t.EnergyHigh
}

// leftShare is left/(left+right); ok is false before any contact.
func leftShare(left, right int) (share float64, ok bool) {
	if left+right <= 0 {
		return 0, false
	}
	return float64(left) / float64(left+right), true
}

// divergingSpan returns the bar's offset from the centre and its width
// for value on a track of width w.
func divergingSpan(value, limit float64, w int32) (offset, span int32) {
	if limit <= 0 {
		return 0, 0
	}
	span = int32(float64(w/2) * math.Min(math.Abs(value)/limit, 1))
	if value < 0 {
		return -span, span
	}
	return 0, span
}
