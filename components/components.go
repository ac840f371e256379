// Package components defines the value types shared by the arena, the
// environment and the renderers.
package components

import "image/color"

// FixtureKind identifies a piece of arena furniture.
type FixtureKind uint8

const (
	FixtureLeftLever FixtureKind = iota
	FixtureRightLever
	FixtureHopper
	FixtureSignalLight
)

// String returns the display name for a FixtureKind.
func (k FixtureKind) String() string {
	switch k {
	case FixtureLeftLever:
		return "left_lever"
	case FixtureRightLever:
		return "right_lever"
	case FixtureHopper:
		return "hopper"
	case FixtureSignalLight:
		return "signal_light"
	}
	return "unknown"
}

// IsLever reports whether the fixture is one of the two contact zones.
func (k FixtureKind) IsLever() bool {
	return k == FixtureLeftLever || k == FixtureRightLever
}

// Fixture is a static object placed in the arena.
// Center and Size are in arena units; Size.Z is the depth along z.
type Fixture struct {
	Kind   FixtureKind
	Name   string
	Center Vec3
	Size   Vec3
	Color  RGB
}

// Lever marks a fixture as a contact zone. Zone is its footprint on the floor plane.
type Lever struct {
	Side Side
	Zone Box
}

// Side distinguishes the two levers.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// RGB is an 8-bit colour used by both the PNG renderer and the live viewer.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color with full opacity.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// WithAlpha returns the colour with the given opacity.
func (c RGB) WithAlpha(a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
