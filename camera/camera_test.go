package camera

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNew(t *testing.T) {
	v := New(0, 0, 400, 400, 0, 0, 1, 1)

	// Should be centered on world
	if v.CenterX != 0.5 || v.CenterY != 0.5 {
		t.Errorf("expected center (0.5, 0.5), got (%f, %f)", v.CenterX, v.CenterY)
	}
	if v.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", v.Zoom)
	}
}

func TestWorldToScreenCorners(t *testing.T) {
	v := New(100, 50, 400, 200, 0, 0, 1, 2)

	tests := []struct {
		wx, wy, sx, sy float64
	}{
		{0, 0, 100, 250}, // bottom-left
		{1, 2, 500, 50},  // top-right
		{0.5, 1, 300, 150},
	}
	for _, tc := range tests {
		sx, sy := v.WorldToScreen(tc.wx, tc.wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("WorldToScreen(%v, %v) = (%v, %v), want (%v, %v)", tc.wx, tc.wy, sx, sy, tc.sx, tc.sy)
		}
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	v := New(10, 20, 640, 360, -1, 0, 3, 5)
	v.ZoomBy(2)
	v.Pan(30, -15)

	testCases := []struct{ sx, sy float64 }{
		{330, 200}, // center
		{50, 40},
		{600, 350},
	}

	for _, tc := range testCases {
		wx, wy := v.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := v.WorldToScreen(wx, wy)
		if math.Abs(sx-tc.sx) > 1e-6 || math.Abs(sy-tc.sy) > 1e-6 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestUniformScale(t *testing.T) {
	v := New(0, 0, 400, 200, 0, 0, 1, 1)
	v.Uniform = true

	sx, sy := v.Scale()
	if sx != 200 || sy != 200 {
		t.Errorf("Scale = (%v, %v), want (200, 200)", sx, sy)
	}
	if got := v.Length(0.5); got != 100 {
		t.Errorf("Length(0.5) = %v, want 100", got)
	}
}

func TestDegenerateWorld(t *testing.T) {
	v := New(0, 0, 100, 100, 0, 3, 10, 3)
	if v.MinY != 2.5 || v.MaxY != 3.5 {
		t.Errorf("y range = [%v, %v], want [2.5, 3.5]", v.MinY, v.MaxY)
	}
	_, sy := v.WorldToScreen(0, 3)
	if !near(sy, 50) {
		t.Errorf("flat series y = %v, want 50", sy)
	}
}

func TestZoomClamping(t *testing.T) {
	v := New(0, 0, 100, 100, 0, 0, 1, 1)

	v.SetZoom(0.1)
	if v.Zoom != v.MinZoom {
		t.Errorf("expected zoom clamped to min %f, got %f", v.MinZoom, v.Zoom)
	}

	v.SetZoom(100)
	if v.Zoom != v.MaxZoom {
		t.Errorf("expected zoom clamped to max %f, got %f", v.MaxZoom, v.Zoom)
	}
}

func TestPanStaysInWorld(t *testing.T) {
	v := New(0, 0, 100, 100, 0, 0, 1, 1)

	// At zoom 1 the whole world is visible, so panning does nothing
	v.Pan(500, 500)
	if v.CenterX != 0.5 || v.CenterY != 0.5 {
		t.Errorf("expected center unchanged at zoom 1, got (%f, %f)", v.CenterX, v.CenterY)
	}

	v.SetZoom(2)
	v.Pan(1000, -1000)
	minX, minY, maxX, maxY := v.VisibleWorldBounds()
	if maxX > 1+1e-9 || maxY > 1+1e-9 || minX < -1e-9 || minY < -1e-9 {
		t.Errorf("visible bounds (%f,%f)-(%f,%f) left the world", minX, minY, maxX, maxY)
	}
	if !near(maxX, 1) || !near(maxY, 1) {
		t.Errorf("expected window pinned to top-right corner, got max (%f, %f)", maxX, maxY)
	}
}

func TestIsVisible(t *testing.T) {
	v := New(0, 0, 100, 100, 0, 0, 1, 1)
	v.SetZoom(4)
	v.CenterX, v.CenterY = 0.125, 0.125

	if !v.IsVisible(0.1, 0.1, 0) {
		t.Error("expected point inside window to be visible")
	}
	if v.IsVisible(0.9, 0.9, 0.01) {
		t.Error("expected far point to be culled")
	}
	if !v.IsVisible(0.3, 0.1, 0.1) {
		t.Error("expected circle overlapping window edge to be visible")
	}
}

func TestContains(t *testing.T) {
	v := New(10, 10, 100, 50, 0, 0, 1, 1)
	if !v.Contains(10, 10) || !v.Contains(110, 60) {
		t.Error("expected rectangle corners to be contained")
	}
	if v.Contains(9, 30) || v.Contains(50, 61) {
		t.Error("expected outside points to be rejected")
	}
}

func TestReset(t *testing.T) {
	v := New(0, 0, 100, 100, 0, 0, 2, 2)
	v.SetZoom(3)
	v.Pan(40, 40)
	v.Reset()

	if v.CenterX != 1 || v.CenterY != 1 || v.Zoom != 1 {
		t.Errorf("expected reset to (1, 1) zoom 1, got (%f, %f) zoom %f", v.CenterX, v.CenterY, v.Zoom)
	}
}
