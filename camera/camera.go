// Package camera maps arena and plot coordinates onto pixel rectangles.
package camera

// Viewport maps a window of world coordinates onto a rectangle of screen
// pixels. World y grows upward, screen y grows downward.
// Supports pan and zoom clamped to the world bounds.
type Viewport struct {
	// Screen rectangle the viewport draws into
	X, Y, W, H float64

	// World bounds
	MinX, MinY, MaxX, MaxY float64

	// Center of the visible window in world coordinates
	CenterX, CenterY float64

	// Zoom level (1.0 = whole world fits the rectangle)
	Zoom float64

	// Uniform keeps one world unit the same number of pixels on both axes.
	Uniform bool

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a viewport showing the whole world [minX,maxX]x[minY,maxY]
// inside the screen rectangle (x, y, w, h).
func New(x, y, w, h, minX, minY, maxX, maxY float64) *Viewport {
	v := &Viewport{
		X: x, Y: y, W: w, H: h,
		Zoom:    1.0,
		MinZoom: 1.0,
		MaxZoom: 8.0,
	}
	v.SetWorld(minX, minY, maxX, maxY)
	return v
}

// SetWorld replaces the world bounds and recenters. A degenerate range is
// widened by half a unit on each side so it still has a scale.
func (v *Viewport) SetWorld(minX, minY, maxX, maxY float64) {
	minX, maxX = widen(minX, maxX)
	minY, maxY = widen(minY, maxY)
	v.MinX, v.MinY, v.MaxX, v.MaxY = minX, minY, maxX, maxY
	v.Reset()
}

// Scale returns pixels per world unit on each axis at the current zoom.
func (v *Viewport) Scale() (sx, sy float64) {
	sx = v.W / (v.MaxX - v.MinX) * v.Zoom
	sy = v.H / (v.MaxY - v.MinY) * v.Zoom
	if v.Uniform {
		s := min(sx, sy)
		return s, s
	}
	return sx, sy
}

// WorldToScreen converts world coordinates to screen coordinates.
func (v *Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	kx, ky := v.Scale()
	sx = v.X + v.W/2 + (wx-v.CenterX)*kx
	sy = v.Y + v.H/2 - (wy-v.CenterY)*ky
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (v *Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	kx, ky := v.Scale()
	wx = v.CenterX + (sx-v.X-v.W/2)/kx
	wy = v.CenterY - (sy-v.Y-v.H/2)/ky
	return wx, wy
}

// Length converts a world length along x to pixels.
func (v *Viewport) Length(d float64) float64 {
	kx, _ := v.Scale()
	return d * kx
}

// Contains reports whether a screen point lies inside the viewport rectangle.
func (v *Viewport) Contains(sx, sy float64) bool {
	return sx >= v.X && sx <= v.X+v.W && sy >= v.Y && sy <= v.Y+v.H
}

// IsVisible returns true if a circle at (wx, wy) with given world radius
// could be visible (conservative check for culling).
func (v *Viewport) IsVisible(wx, wy, radius float64) bool {
	minX, minY, maxX, maxY := v.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX && wy+radius >= minY && wy-radius <= maxY
}

// Resize updates the screen rectangle.
func (v *Viewport) Resize(x, y, w, h float64) {
	v.X, v.Y, v.W, v.H = x, y, w, h
}

// Pan moves the visible window by the given delta in screen pixels.
// The window never leaves the world bounds.
func (v *Viewport) Pan(dx, dy float64) {
	kx, ky := v.Scale()
	v.CenterX += dx / kx
	v.CenterY -= dy / ky
	v.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (v *Viewport) SetZoom(zoom float64) {
	v.Zoom = clamp(zoom, v.MinZoom, v.MaxZoom)
	v.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (v *Viewport) ZoomBy(factor float64) {
	v.SetZoom(v.Zoom * factor)
}

// Reset shows the whole world again.
func (v *Viewport) Reset() {
	v.CenterX = (v.MinX + v.MaxX) / 2
	v.CenterY = (v.MinY + v.MaxY) / 2
	v.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (v *Viewport) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	kx, ky := v.Scale()
	halfW := v.W / (2 * kx)
	halfH := v.H / (2 * ky)
	return v.CenterX - halfW, v.CenterY - halfH, v.CenterX + halfW, v.CenterY + halfH
}

// clampCenter keeps the visible window inside the world bounds.
func (v *Viewport) clampCenter() {
	kx, ky := v.Scale()
	halfW := v.W / (2 * kx)
	halfH := v.H / (2 * ky)
	v.CenterX = clampSpan(v.CenterX, v.MinX+halfW, v.MaxX-halfW)
	v.CenterY = clampSpan(v.CenterY, v.MinY+halfH, v.MaxY-halfH)
}

// clampSpan clamps x to [lo, hi], or returns the midpoint when the window
// is wider than the span.
func clampSpan(x, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return clamp(x, lo, hi)
}

func widen(lo, hi float64) (float64, float64) {
	if hi-lo < 1e-9 {
		mid := (lo + hi) / 2
		return mid - 0.5, mid + 0.5
	}
	return lo, hi
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
