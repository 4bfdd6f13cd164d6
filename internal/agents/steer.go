package agents

import "github.com/talgya/mini-city/internal/world"

// Eight-way headings run clockwise from north: 1 N, 2 NE, 3 E, 4 SE, 5 S,
// 6 SW, 7 W, 8 NW.
var octant = [13]int{0, 3, 2, 1, 3, 4, 5, 7, 6, 5, 7, 8, 1}

// direction returns the eight-way heading from org toward dst and the
// Manhattan distance between them.
func direction(org, dst world.Point) (heading, dist int) {
	dx := dst.X - org.X
	dy := dst.Y - org.Y

	var z int
	switch {
	case dx < 0 && dy < 0:
		z = 11
	case dx < 0:
		z = 8
	case dy < 0:
		z = 2
	default:
		z = 5
	}

	dx, dy = abs(dx), abs(dy)
	dist = dx + dy

	if dx*2 < dy {
		z++
	} else if dy*2 < dx {
		z--
	}
	if z < 0 || z > 12 {
		z = 0
	}
	return octant[z], dist
}

// turnTo rotates heading p one step toward d the short way round.
func turnTo(p, d int) int {
	if p == d {
		return p
	}
	if p < d {
		if d-p < 4 {
			p++
		} else {
			p--
		}
	} else {
		if p-d < 4 {
			p--
		} else {
			p++
		}
	}
	if p > 8 {
		p = 1
	}
	if p < 1 {
		p = 8
	}
	return p
}

// Collided reports whether two active agents are within 30px of each other.
func Collided(a, b *Agent) bool {
	return a.Active && b.Active && a.Position.DistSq(b.Position) <= 30*30
}

// positionValid reports whether the hot spot lies inside the map.
func (r *Registry) positionValid(a *Agent) bool {
	w, h := r.env.Grid.Size()
	p := a.HotSpot()
	return p.X >= 0 && p.X < w*world.TileSize && p.Y >= 0 && p.Y < h*world.TileSize
}

// maskedAt returns the masked tile under a pixel, or false off the map.
func (r *Registry) maskedAt(pixel world.Point) (world.Tile, bool) {
	if pixel.X < 0 || pixel.Y < 0 {
		return 0, false
	}
	tile := pixel.ToTile()
	if !r.env.Grid.Valid(tile) {
		return 0, false
	}
	return r.env.Grid.Tile(tile).Masked(), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
