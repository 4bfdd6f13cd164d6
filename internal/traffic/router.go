// Package traffic decides whether a zone has usable transport access.
// A bounded randomized walk leaves the zone along road or rail and looks for
// a tile of the complementary zone category; successful trips raise the
// traffic density along the path.
package traffic

import (
	"github.com/talgya/mini-city/internal/entropy"
	"github.com/talgya/mini-city/internal/world"
)

// Result is the outcome of a traffic evaluation.
type Result uint8

const (
	RouteFound        Result = iota // Reached a destination zone
	RouteNotFound                   // Ran out of road or step budget
	NoTransportNearby               // No road or rail on the zone perimeter
)

// String returns a snake_case name for the result.
func (r Result) String() string {
	switch r {
	case RouteFound:
		return "route_found"
	case RouteNotFound:
		return "route_not_found"
	case NoTransportNearby:
		return "no_transport_nearby"
	default:
		return "unknown"
	}
}

const (
	// MaxDistance is the step budget of one walk.
	MaxDistance = 30

	// deadEndPenalty is added to the step counter on each dead end.
	deadEndPenalty = 3

	// densityStep is added to the traffic cell of every recorded road tile.
	densityStep = 50

	// hotspotLevel is the traffic level past which a cell may become a
	// helicopter hotspot.
	hotspotLevel = int(world.RESBASE)
)

// Compass directions for the walk, in the order they are tried.
const (
	north = iota
	east
	south
	west

	noDirection = -1
)

var adjacent = [4]world.Point{
	north: {X: 0, Y: -1},
	east:  {X: 1, Y: 0},
	south: {X: 0, Y: 1},
	west:  {X: -1, Y: 0},
}

// perimeter is the ring of offsets around a zone center checked for road.
var perimeter = [12]world.Point{
	{X: -1, Y: -2}, {X: 0, Y: -2}, {X: 1, Y: -2},
	{X: 2, Y: -1}, {X: 2, Y: 0}, {X: 2, Y: 1},
	{X: 1, Y: 2}, {X: 0, Y: 2}, {X: -1, Y: 2},
	{X: -2, Y: 1}, {X: -2, Y: 0}, {X: -2, Y: -1},
}

// Destination ranges keyed by the source category:
// residential→commercial, commercial→industrial, industrial→residential.
var (
	destLow  = [3]world.Tile{world.COMBASE, world.LHTHR, world.LHTHR}
	destHigh = [3]world.Tile{world.NUCLEAR, world.PORT, world.COMBASE}
)

// HotspotWatcher is told when a traffic cell crosses the hotspot level.
// The simulation diverts its helicopter there.
type HotspotWatcher interface {
	TrafficHotspot(pixel world.Point)
}

// Router evaluates zone connectivity against a grid and a traffic map.
// A Router holds no per-evaluation state, so repeated calls cannot interfere.
type Router struct {
	grid    world.Grid
	density world.Density
	rand    entropy.Source
	watcher HotspotWatcher
}

// NewRouter creates a Router. watcher may be nil.
func NewRouter(grid world.Grid, density world.Density, rand entropy.Source, watcher HotspotWatcher) *Router {
	return &Router{
		grid:    grid,
		density: density,
		rand:    rand,
		watcher: watcher,
	}
}

// search is the state of a single evaluation.
type search struct {
	category  world.ZoneCategory
	pos       world.Point
	forbidden int           // Direction that would reverse the last move
	stack     []world.Point // Every other visited tile, for density updates
}

// Evaluate walks from the zone centered on origin toward the category that
// zones of type cat send traffic to.
func (r *Router) Evaluate(cat world.ZoneCategory, origin world.Point) Result {
	if int(cat) >= len(destLow) {
		return RouteNotFound
	}

	start, ok := r.roadOnPerimeter(origin)
	if !ok {
		return NoTransportNearby
	}

	s := &search{
		category:  cat,
		pos:       start,
		forbidden: noDirection,
		stack:     make([]world.Point, 0, MaxDistance),
	}
	if !r.drive(s) {
		return RouteNotFound
	}
	r.spreadDensity(s)
	return RouteFound
}

// roadOnPerimeter returns the first perimeter tile carrying road or rail.
func (r *Router) roadOnPerimeter(origin world.Point) (world.Point, bool) {
	for _, off := range perimeter {
		p := origin.Add(off)
		if r.grid.Valid(p) && world.IsRoadOrRail(r.grid.Tile(p)) {
			return p, true
		}
	}
	return world.Point{}, false
}

// drive runs the walk until it reaches a destination or the budget runs out.
func (r *Router) drive(s *search) bool {
	for distance := 0; distance < MaxDistance; distance++ {
		if r.tryGo(s, distance) {
			if r.arrived(s) {
				return true
			}
			continue
		}

		// Dead end: give up at the start, otherwise pay for backing out.
		if len(s.stack) == 0 {
			return false
		}
		distance += deadEndPenalty
		s.forbidden = noDirection
	}
	return false
}

// tryGo takes one step along road or rail, starting from a random direction
// and never reversing the previous step.
func (r *Router) tryGo(s *search, distance int) bool {
	start := r.rand.Range(0, 3)
	for i := 0; i < 4; i++ {
		dir := (start + i) % 4
		if dir == s.forbidden {
			continue
		}
		next := s.pos.Add(adjacent[dir])
		if !r.grid.Valid(next) || !world.IsRoadOrRail(r.grid.Tile(next)) {
			continue
		}

		s.pos = next
		s.forbidden = (dir + 2) % 4
		if distance%2 == 1 {
			s.stack = append(s.stack, next)
		}
		return true
	}
	return false
}

// arrived reports whether a destination zone tile touches the current tile.
func (r *Router) arrived(s *search) bool {
	lo, hi := destLow[s.category], destHigh[s.category]
	for _, d := range adjacent {
		p := s.pos.Add(d)
		if !r.grid.Valid(p) {
			continue
		}
		if m := r.grid.Tile(p).Masked(); m >= lo && m <= hi {
			return true
		}
	}
	return false
}

// spreadDensity drains the stack, adding traffic to every recorded tile that
// is still road.
func (r *Router) spreadDensity(s *search) {
	for len(s.stack) > 0 {
		p := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		if !r.grid.Valid(p) || !world.IsRoadway(r.grid.Tile(p).Masked()) {
			continue
		}

		cell := r.density.Cell(p)
		v := r.density.Get(cell) + densityStep
		if v > hotspotLevel && r.rand.Range(0, 5) == 0 {
			v = hotspotLevel
			if r.watcher != nil {
				r.watcher.TrafficHotspot(p.ToPixel())
			}
		}
		r.density.Set(cell, v)
	}
}
