// Zone placement: lays a road grid and a rail line over generated terrain
// and seeds residential, commercial and industrial zones beside the roads.
package world

import (
	"math/rand"
	"sort"
)

// ZoneSeed describes one placed 3×3 zone.
type ZoneSeed struct {
	Center   Point
	Category ZoneCategory
	Score    float64 // Desirability score
	Name     string  // District name, for logs
}

// Road and rail spacing for the seeded street grid.
const (
	roadRowSpacing = 10
	roadColSpacing = 12
)

// zoneBase maps a category to the first tile of its 3×3 footprint.
var zoneBase = [3]Tile{
	Residential: RESBASE,
	Commercial:  COMBASE,
	Industrial:  INDBASE,
}

// PlaceZones lays roads, a rail line and zones onto m. Returns the placed
// zones sorted by desirability.
func PlaceZones(m *Map, seed int64) []ZoneSeed {
	rng := rand.New(rand.NewSource(seed + 200))
	w, h := m.Size()

	for y := roadRowSpacing / 2; y < h; y += roadRowSpacing {
		for x := 0; x < w; x++ {
			layRoad(m, Point{X: x, Y: y}, true)
		}
	}
	for x := roadColSpacing / 2; x < w; x += roadColSpacing {
		for y := 0; y < h; y++ {
			layRoad(m, Point{X: x, Y: y}, false)
		}
	}
	if railY := h/2 + 2; railY < h {
		for x := 0; x < w; x++ {
			layRail(m, Point{X: x, Y: railY})
		}
	}

	// Score every zone-sized lot that touches a road row.
	type scored struct {
		center Point
		score  float64
	}
	var candidates []scored
	for y := roadRowSpacing / 2; y < h; y += roadRowSpacing {
		for _, cy := range [2]int{y - 2, y + 2} {
			for cx := 1; cx < w-1; cx += 4 {
				c := Point{X: cx, Y: cy}
				if s := lotScore(m, c); s > 0 {
					candidates = append(candidates, scored{c, s})
				}
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var seeds []ZoneSeed
	for _, c := range candidates {
		if lotScore(m, c.center) <= 0 {
			continue // Overlaps a lot placed earlier.
		}
		cat := pickCategory(rng)
		placeZone(m, c.center, cat)
		seeds = append(seeds, ZoneSeed{Center: c.center, Category: cat, Score: c.score})
	}

	names := generateNames(rng, len(seeds))
	for i := range seeds {
		seeds[i].Name = names[i]
	}
	return seeds
}

// layRoad places a road tile, a bridge over river, or an open drawbridge over
// the channel. Crossing an existing road makes an intersection.
func layRoad(m *Map, p Point, horizontal bool) {
	cur := m.Tile(p).Masked()
	switch {
	case IsRoadway(cur) && cur != HBRIDGE && cur != VBRIDGE && cur != BRWH && cur != BRWV:
		m.SetTile(p, INTERSECTION|BLBNBIT)
	case cur == CHANNEL:
		if horizontal {
			m.SetTile(p, BRWH|BULLBIT)
		} else {
			m.SetTile(p, BRWV|BULLBIT)
		}
	case IsWater(cur):
		if horizontal {
			m.SetTile(p, HBRIDGE|BULLBIT)
		} else {
			m.SetTile(p, VBRIDGE|BULLBIT)
		}
	case IsRoadway(cur):
		// Keep existing bridges.
	default:
		if horizontal {
			m.SetTile(p, ROADS|BLBNBIT)
		} else {
			m.SetTile(p, ROADS2|BLBNBIT)
		}
	}
}

// layRail places a horizontal rail segment, on a rail bridge over water.
// Roads are crossed rather than replaced.
func layRail(m *Map, p Point) {
	cur := m.Tile(p).Masked()
	switch {
	case IsRoadway(cur):
		return
	case IsWater(cur):
		m.SetTile(p, HRAIL|BULLBIT)
	default:
		m.SetTile(p, LHRAIL|BLBNBIT)
	}
}

// lotScore evaluates a 3×3 lot centered on c. Returns 0 when any tile of the
// footprint is unbuildable. Prefers open dirt near water.
func lotScore(m *Map, c Point) float64 {
	score := 0.0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			p := Point{X: c.X + dx, Y: c.Y + dy}
			if !m.Valid(p) {
				return 0
			}
			t := m.Tile(p).Masked()
			switch {
			case t == DIRT:
				score += 1.0
			case IsTree(t):
				score += 0.5
			default:
				return 0
			}
		}
	}

	// Bonus for water within a few tiles.
	for dy := -3; dy <= 3; dy++ {
		for dx := -3; dx <= 3; dx++ {
			if abs(dx) < 2 && abs(dy) < 2 {
				continue
			}
			if IsWater(m.Tile(Point{X: c.X + dx, Y: c.Y + dy}).Masked()) {
				return score + 1.5
			}
		}
	}
	return score
}

func pickCategory(rng *rand.Rand) ZoneCategory {
	r := rng.Float32()
	switch {
	case r < 0.5:
		return Residential
	case r < 0.8:
		return Commercial
	default:
		return Industrial
	}
}

// placeZone stamps the 3×3 footprint of an empty zone around c.
func placeZone(m *Map, c Point, cat ZoneCategory) {
	base := zoneBase[cat]
	i := Tile(0)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			t := (base + i) | BURNBIT | CONDBIT
			if dx == 0 && dy == 0 {
				t |= ZONEBIT | BULLBIT
			}
			m.SetTile(Point{X: c.X + dx, Y: c.Y + dy}, t)
			i++
		}
	}
}

// generateNames produces procedural district names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "High", "Low", "Old", "New",
		"Far", "Deep", "Long", "Broad", "Gold", "Elm", "Oak",
		"Pine", "Copper", "River", "Harbor", "Bay", "Lake",
	}
	suffixes := []string{
		"side", "ford", "hollow", "wick", "bridge", "gate", "park",
		"field", "dale", "crest", "vale", "port", "town", "bury",
		"well", "brook", "ridge", "point", "heights", "row", "end",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] || len(used) >= len(prefixes)*len(suffixes) {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}
