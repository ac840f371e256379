package renderer

import (
	"fmt"
	"math"
	"sort"

	"github.com/fogleman/gg"

	"github.com/pthm-cable/leverbox/camera"
	"github.com/pthm-cable/leverbox/components"
	"github.com/pthm-cable/leverbox/env"
)

// View angles of the oblique arena panel, in degrees.
const (
	viewAzimuth   = -60
	viewElevation = 30
)

// projector maps arena points onto a 2D plane using an orthographic
// view from (azimuth, elevation).
type projector struct {
	h, v, depth components.Vec3
}

func newProjector(azimuthDeg, elevationDeg float64) projector {
	a := azimuthDeg * math.Pi / 180
	e := elevationDeg * math.Pi / 180
	return projector{
		h:     components.Vec3{X: -math.Sin(a), Y: math.Cos(a)},
		v:     components.Vec3{X: -math.Cos(a) * math.Sin(e), Y: -math.Sin(a) * math.Sin(e), Z: math.Cos(e)},
		depth: components.Vec3{X: math.Cos(a) * math.Cos(e), Y: math.Sin(a) * math.Cos(e), Z: math.Sin(e)},
	}
}

func dot(a, b components.Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// plane returns the 2D coordinates of p on the view plane.
func (p projector) plane(q components.Vec3) (float64, float64) {
	return dot(q, p.h), dot(q, p.v)
}

// toward returns how close q is to the viewer; larger is nearer.
func (p projector) toward(q components.Vec3) float64 {
	return dot(q, p.depth)
}

// face is one filled polygon of the arena scene.
type face struct {
	pts    []components.Vec3
	fill   components.RGB
	alpha  uint8
	stroke bool
}

func (f face) centroid() components.Vec3 {
	var c components.Vec3
	for _, p := range f.pts {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	n := float64(len(f.pts))
	return components.Vec3{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}

// boxFaces returns the six faces of an axis-aligned box.
func boxFaces(center, size components.Vec3, fill components.RGB) []face {
	x0, x1 := center.X-size.X/2, center.X+size.X/2
	y0, y1 := center.Y-size.Y/2, center.Y+size.Y/2
	z0, z1 := center.Z-size.Z/2, center.Z+size.Z/2
	c := [8]components.Vec3{
		{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x0, Y: y1, Z: z0},
		{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1},
	}
	quads := [6][4]int{{0, 1, 2, 3}, {4, 5, 6, 7}, {0, 1, 5, 4}, {2, 3, 7, 6}, {1, 2, 6, 5}, {4, 7, 3, 0}}
	faces := make([]face, 0, len(quads))
	for _, q := range quads {
		faces = append(faces, face{
			pts:    []components.Vec3{c[q[0]], c[q[1]], c[q[2]], c[q[3]]},
			fill:   fill,
			alpha:  255,
			stroke: true,
		})
	}
	return faces
}

// wallFaces returns the translucent floor, ceiling and four walls.
func wallFaces(size components.Vec3) []face {
	w, d, h := size.X, size.Y, size.Z
	q := func(fill components.RGB, alpha uint8, pts ...components.Vec3) face {
		return face{pts: pts, fill: fill, alpha: alpha}
	}
	return []face{
		q(components.ColorWallGrey, 128, components.Vec3{}, components.Vec3{X: w}, components.Vec3{X: w, Y: d}, components.Vec3{Y: d}),
		q(components.ColorWallGrey, 26, components.Vec3{Z: h}, components.Vec3{X: w, Z: h}, components.Vec3{X: w, Y: d, Z: h}, components.Vec3{Y: d, Z: h}),
		q(components.ColorWallBlue, 26, components.Vec3{}, components.Vec3{X: w}, components.Vec3{X: w, Z: h}, components.Vec3{Z: h}),
		q(components.ColorWallRed, 26, components.Vec3{Y: d}, components.Vec3{X: w, Y: d}, components.Vec3{X: w, Y: d, Z: h}, components.Vec3{Y: d, Z: h}),
		q(components.ColorWallGreen, 26, components.Vec3{X: w}, components.Vec3{X: w, Y: d}, components.Vec3{X: w, Y: d, Z: h}, components.Vec3{X: w, Z: h}),
		q(components.ColorWallGrey, 26, components.Vec3{}, components.Vec3{Y: d}, components.Vec3{Y: d, Z: h}, components.Vec3{Z: h}),
	}
}

// hopperFace returns a hopper as a flat rectangle in the y-z plane.
func hopperFace(f components.Fixture) face {
	y0, y1 := f.Center.Y-f.Size.Y/2, f.Center.Y+f.Size.Y/2
	z0, z1 := f.Center.Z-f.Size.Z/2, f.Center.Z+f.Size.Z/2
	x := f.Center.X
	return face{
		pts: []components.Vec3{
			{X: x, Y: y0, Z: z0}, {X: x, Y: y1, Z: z0}, {X: x, Y: y1, Z: z1}, {X: x, Y: y0, Z: z1},
		},
		fill:  f.Color,
		alpha: 255,
	}
}

// drawArena draws the oblique view of the box with its fixtures and the agent.
func (r *FrameRenderer) drawArena(dc *gg.Context, area rect, snap env.FrameSnapshot) {
	size := snap.ArenaSize
	proj := newProjector(viewAzimuth, viewElevation)

	// Fit the projected arena corners into the panel.
	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)
	for _, c := range []components.Vec3{
		{}, {X: size.X}, {Y: size.Y}, {X: size.X, Y: size.Y},
		{Z: size.Z}, {X: size.X, Z: size.Z}, {Y: size.Y, Z: size.Z}, {X: size.X, Y: size.Y, Z: size.Z},
	} {
		u, v := proj.plane(c)
		minU, maxU = math.Min(minU, u), math.Max(maxU, u)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
	}
	vp := camera.New(area.X, area.Y, area.W, area.H, minU, minV, maxU, maxV)
	vp.Uniform = true

	toScreen := func(p components.Vec3) (float64, float64) {
		u, v := proj.plane(p)
		return vp.WorldToScreen(u, v)
	}

	faces := wallFaces(size)
	var lights []components.Fixture
	for _, f := range r.opts.Fixtures {
		switch {
		case f.Kind.IsLever():
			faces = append(faces, boxFaces(f.Center, f.Size, f.Color)...)
		case f.Kind == components.FixtureHopper:
			faces = append(faces, hopperFace(f))
		case f.Kind == components.FixtureSignalLight:
			lights = append(lights, f)
		}
	}
	body := r.opts.BodySize
	agent := components.Vec3{X: snap.Position.X, Y: snap.Position.Y, Z: body / 2}
	faces = append(faces, boxFaces(agent, components.Vec3{X: body, Y: body, Z: body}, components.ColorAgent)...)

	// Painter's order: farthest first.
	sort.SliceStable(faces, func(i, j int) bool {
		return proj.toward(faces[i].centroid()) < proj.toward(faces[j].centroid())
	})

	for _, f := range faces {
		dc.NewSubPath()
		for _, p := range f.pts {
			x, y := toScreen(p)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
		dc.SetColor(f.fill.WithAlpha(f.alpha))
		if f.stroke {
			dc.FillPreserve()
			dc.SetColor(colorAxis)
			dc.SetLineWidth(0.5)
			dc.Stroke()
		} else {
			dc.Fill()
		}
	}

	for _, l := range lights {
		x, y := toScreen(l.Center)
		dc.DrawCircle(x, y, 10)
		dc.SetColor(l.Color)
		dc.Fill()
	}

	dc.SetColor(colorAxis)
	dc.DrawStringAnchored("X axis", area.X+area.W*0.75, area.Y+area.H-4, 0.5, 0)
	dc.DrawStringAnchored("Y axis", area.X+area.W*0.25, area.Y+area.H-4, 0.5, 0)
	dc.DrawStringWrapped(fmt.Sprintf("Rewards Earned:\n%d", snap.RewardsEarned),
		area.X+8, area.Y+8, 0, 0, 160, 1.4, gg.AlignLeft)
}
