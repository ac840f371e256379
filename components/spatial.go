package components

import "gonum.org/v1/gonum/spatial/r2"

// Vec3 is a position in arena space.
type Vec3 struct {
	X, Y, Z float64
}

// Array returns the vector as [x, y, z].
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Vec3FromArray is the inverse of Array.
func Vec3FromArray(a [3]float64) Vec3 {
	return Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// Point is a 2D projection of a position.
type Point struct {
	X, Y float64
}

// Box is an axis-aligned rectangle on a 2D plane.
type Box struct {
	r2.Box
}

// BoxAt returns the box with the given center and full size.
func BoxAt(center, size Point) Box {
	return Box{r2.Box{
		Min: r2.Vec{X: center.X - size.X/2, Y: center.Y - size.Y/2},
		Max: r2.Vec{X: center.X + size.X/2, Y: center.Y + size.Y/2},
	}}
}

// Square returns the square of half-length half centered on center.
func Square(center Point, half float64) Box {
	return BoxAt(center, Point{X: 2 * half, Y: 2 * half})
}

// Overlaps reports whether b and o share at least one point.
// Touching edges count as overlap.
func (b Box) Overlaps(o Box) bool {
	return b.Min.X <= o.Max.X &&
		b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y &&
		b.Max.Y >= o.Min.Y
}

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Width returns the extent along x.
func (b Box) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the extent along y.
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }
