package world

// Density is the coarse-grid capability used by both the router and the
// agents. Cells cover Scale×Scale tiles.
type Density interface {
	Cell(tile Point) Point
	Get(cell Point) int
	Set(cell Point, v int)
	Valid(cell Point) bool
}

// DensityMap is a coarse grid of accumulating scalar values (traffic,
// pollution, rate of growth). Writes saturate to [Min, Max].
type DensityMap struct {
	Scale int
	Min   int
	Max   int

	width  int
	height int
	cells  []int
}

// Coarsening factors used by the simulation maps.
const (
	HalfScale   = 2
	EighthScale = 8
)

// NewDensityMap creates a map covering tilesW×tilesH tiles at the given scale.
func NewDensityMap(tilesW, tilesH, scale, min, max int) *DensityMap {
	w := (tilesW + scale - 1) / scale
	h := (tilesH + scale - 1) / scale
	return &DensityMap{
		Scale:  scale,
		Min:    min,
		Max:    max,
		width:  w,
		height: h,
		cells:  make([]int, w*h),
	}
}

// NewTrafficMap returns a half-scale byte-range map for traffic or pollution.
func NewTrafficMap(tilesW, tilesH int) *DensityMap {
	return NewDensityMap(tilesW, tilesH, HalfScale, 0, 255)
}

// NewGrowthMap returns an eighth-scale signed rate-of-growth map.
func NewGrowthMap(tilesW, tilesH int) *DensityMap {
	return NewDensityMap(tilesW, tilesH, EighthScale, -200, 200)
}

// Size returns the map dimensions in cells.
func (d *DensityMap) Size() (int, int) { return d.width, d.height }

// Cell maps a tile coordinate to the cell covering it.
func (d *DensityMap) Cell(tile Point) Point {
	return Point{X: tile.X / d.Scale, Y: tile.Y / d.Scale}
}

// Valid returns true if the cell is inside the map.
func (d *DensityMap) Valid(cell Point) bool {
	return cell.X >= 0 && cell.X < d.width && cell.Y >= 0 && cell.Y < d.height
}

// Get returns the value at cell, or 0 when the cell is out of bounds.
func (d *DensityMap) Get(cell Point) int {
	if !d.Valid(cell) {
		return 0
	}
	return d.cells[cell.Y*d.width+cell.X]
}

// Set stores v at cell, saturated to the map bounds.
func (d *DensityMap) Set(cell Point, v int) {
	if !d.Valid(cell) {
		return
	}
	if v < d.Min {
		v = d.Min
	}
	if v > d.Max {
		v = d.Max
	}
	d.cells[cell.Y*d.width+cell.X] = v
}

// Add adjusts the value at cell by dv and returns the stored result.
func (d *DensityMap) Add(cell Point, dv int) int {
	d.Set(cell, d.Get(cell)+dv)
	return d.Get(cell)
}

// Peak returns the cell holding the largest value. Ties keep the first cell
// in row-major order.
func (d *DensityMap) Peak() (Point, int) {
	var best Point
	bestVal := d.Min - 1
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			if v := d.cells[y*d.width+x]; v > bestVal {
				bestVal = v
				best = Point{X: x, Y: y}
			}
		}
	}
	return best, bestVal
}

// PeakTile returns the tile coordinate of the corner of the peak cell.
func (d *DensityMap) PeakTile() Point {
	cell, _ := d.Peak()
	return Point{X: cell.X * d.Scale, Y: cell.Y * d.Scale}
}

// Reset zeroes every cell.
func (d *DensityMap) Reset() {
	for i := range d.cells {
		d.cells[i] = 0
	}
}
