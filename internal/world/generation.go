// Terrain generation using layered simplex noise.
// Produces open water, a navigable channel, shorelines and woodland on a
// DIRT base; zones and transport are laid afterwards by PlaceZones.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Width      int
	Height     int
	Seed       int64   // Random seed (0 = random)
	WaterLevel float64 // Elevation below which tiles become water (0.0–1.0)
	WoodsLevel float64 // Vegetation noise above which dirt becomes woods (0.0–1.0)
}

// DefaultGenConfig returns the standard 120×100 city configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:      Width,
		Height:     Height,
		Seed:       0,
		WaterLevel: 0.28,
		WoodsLevel: 0.62,
	}
}

// SmallTestConfig returns a tiny map for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:      32,
		Height:     24,
		Seed:       42,
		WaterLevel: 0.30,
		WoodsLevel: 0.65,
	}
}

// Generate creates a terrain map. The same seed always produces the same map.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	woodNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Width, cfg.Height)
	elev := make([]float64, cfg.Width*cfg.Height)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			e := octaveNoise(elevNoise, float64(x), float64(y), 4, 0.04, 0.5)
			elev[y*cfg.Width+x] = e
			p := Point{X: x, Y: y}

			switch {
			case e < cfg.WaterLevel:
				m.SetTile(p, RIVER)
			case octaveNoise(woodNoise, float64(x), float64(y), 3, 0.09, 0.5) > cfg.WoodsLevel:
				m.SetTile(p, WOODS|BLBNBIT)
			}
		}
	}

	carveChannel(m, elev, seed)
	markShores(m)
	return m
}

// carveChannel traces a navigable channel from the top edge downward,
// following the lowest neighboring elevation, so ships have somewhere to
// enter the map.
func carveChannel(m *Map, elev []float64, seed int64) {
	w, h := m.Size()
	if w < 8 || h < 2 {
		return
	}
	rng := rand.New(rand.NewSource(seed + 100))

	// Start at the lowest point of the top row, away from the corners.
	startX := 4
	for x := 4; x < w-2; x++ {
		if elev[x] < elev[startX] {
			startX = x
		}
	}

	x := startX
	for y := 0; y < h; y++ {
		m.SetTile(Point{X: x, Y: y}, CHANNEL)

		// Drift toward the lower side, with an occasional random meander.
		next := x
		if x > 1 && elev[y*w+x-1] < elev[y*w+next] {
			next = x - 1
		}
		if x < w-2 && elev[y*w+x+1] < elev[y*w+next] {
			next = x + 1
		}
		if rng.Intn(6) == 0 {
			next = x + rng.Intn(3) - 1
		}
		if next < 1 {
			next = 1
		}
		if next > w-2 {
			next = w - 2
		}
		if next != x {
			// Keep the channel connected orthogonally.
			m.SetTile(Point{X: next, Y: y}, CHANNEL)
		}
		x = next
	}
}

// markShores converts water tiles that touch land into bulldozable river
// edges. Channel tiles are left navigable.
func markShores(m *Map) {
	var shore []Point
	m.Each(func(p Point, t Tile) {
		if t != RIVER {
			return
		}
		for _, d := range [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
			n := p.Add(d)
			if m.Valid(n) && !IsWater(m.Tile(n).Masked()) {
				shore = append(shore, p)
				return
			}
		}
	})
	for _, p := range shore {
		m.SetTile(p, REDGE|BULLBIT)
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
