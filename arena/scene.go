// Package arena holds the static furniture of the operant box.
package arena

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/leverbox/components"
	"github.com/pthm-cable/leverbox/config"
)

// Scene stores the fixtures as ECS entities. Levers carry an extra Lever
// component so contact checks only iterate the two zones.
type Scene struct {
	world *ecs.World

	fixtureMapper *ecs.Map1[components.Fixture]
	leverMapper   *ecs.Map2[components.Fixture, components.Lever]

	fixtureFilter *ecs.Filter1[components.Fixture]
	leverFilter   *ecs.Filter1[components.Lever]

	width, depth, height float64
}

// Contact is the result of testing a footprint against both levers.
type Contact struct {
	Left, Right bool
}

// Any reports whether either lever was touched.
func (c Contact) Any() bool {
	return c.Left || c.Right
}

// Count returns how many levers were touched (0, 1 or 2).
func (c Contact) Count() int {
	n := 0
	if c.Left {
		n++
	}
	if c.Right {
		n++
	}
	return n
}

// NewScene builds the arena described by cfg: two levers, two food
// hoppers and two signal lights.
func NewScene(cfg *config.Config) *Scene {
	world := ecs.NewWorld()

	s := &Scene{
		world:         world,
		fixtureMapper: ecs.NewMap1[components.Fixture](world),
		leverMapper:   ecs.NewMap2[components.Fixture, components.Lever](world),
		fixtureFilter: ecs.NewFilter1[components.Fixture](world),
		leverFilter:   ecs.NewFilter1[components.Lever](world),
		width:         cfg.Arena.Width,
		depth:         cfg.Arena.Depth,
		height:        cfg.Arena.Height,
	}

	lv := cfg.Levers
	s.addLever(components.SideLeft, "Left lever", lv, lv.Left)
	s.addLever(components.SideRight, "Right lever", lv, lv.Right)

	// Hoppers sit on the front wall just below the floor line.
	s.addFixture(components.Fixture{
		Kind:   components.FixtureHopper,
		Name:   "Left hopper",
		Center: components.Vec3{X: 0.01, Y: 0.285, Z: 0.0},
		Size:   components.Vec3{X: 0.0, Y: 0.2, Z: 0.1},
		Color:  components.ColorHopper,
	})
	s.addFixture(components.Fixture{
		Kind:   components.FixtureHopper,
		Name:   "Right hopper",
		Center: components.Vec3{X: 0.01, Y: 0.8, Z: 0.0},
		Size:   components.Vec3{X: 0.0, Y: 0.2, Z: 0.1},
		Color:  components.ColorHopper,
	})

	s.addFixture(components.Fixture{
		Kind:   components.FixtureSignalLight,
		Name:   "Left signal",
		Center: components.Vec3{X: 0, Y: 0.25, Z: 0.6},
		Color:  components.ColorSignalRed,
	})
	s.addFixture(components.Fixture{
		Kind:   components.FixtureSignalLight,
		Name:   "Right signal",
		Center: components.Vec3{X: 0, Y: 0.75, Z: 0.6},
		Color:  components.ColorSignalGreen,
	})

	return s
}

func (s *Scene) addLever(side components.Side, name string, lv config.LeversConfig, pos config.LeverPos) {
	kind := components.FixtureLeftLever
	if side == components.SideRight {
		kind = components.FixtureRightLever
	}
	fixture := components.Fixture{
		Kind:   kind,
		Name:   name,
		Center: components.Vec3{X: pos.X, Y: pos.Y, Z: lv.MountZ - lv.Height/2},
		Size:   components.Vec3{X: lv.Length, Y: lv.Width, Z: lv.Height},
		Color:  components.ColorLever,
	}
	lever := components.Lever{
		Side: side,
		Zone: components.BoxAt(
			components.Point{X: pos.X, Y: pos.Y},
			components.Point{X: lv.Length, Y: lv.Width},
		),
	}
	s.leverMapper.NewEntity(&fixture, &lever)
}

func (s *Scene) addFixture(f components.Fixture) {
	s.fixtureMapper.NewEntity(&f)
}

// Levers returns the left and right contact zones.
func (s *Scene) Levers() (left, right components.Box) {
	query := s.leverFilter.Query()
	for query.Next() {
		lever := query.Get()
		if lever.Side == components.SideLeft {
			left = lever.Zone
		} else {
			right = lever.Zone
		}
	}
	return left, right
}

// Contacts tests footprint against both levers independently.
func (s *Scene) Contacts(footprint components.Box) Contact {
	var c Contact
	query := s.leverFilter.Query()
	for query.Next() {
		lever := query.Get()
		if !footprint.Overlaps(lever.Zone) {
			continue
		}
		if lever.Side == components.SideLeft {
			c.Left = true
		} else {
			c.Right = true
		}
	}
	return c
}

// Fixtures returns a copy of every fixture in the scene ordered by kind,
// so the two levers come first.
func (s *Scene) Fixtures() []components.Fixture {
	var out []components.Fixture
	query := s.fixtureFilter.Query()
	for query.Next() {
		out = append(out, *query.Get())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Size returns the arena extents along x, y and z.
func (s *Scene) Size() components.Vec3 {
	return components.Vec3{X: s.width, Y: s.depth, Z: s.height}
}
