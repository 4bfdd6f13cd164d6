package world

import "fmt"

// Default grid dimensions in tiles, and the pixel size of one tile.
const (
	Width    = 120
	Height   = 100
	TileSize = 16
)

// Point is an integer pair. The same type carries tile coordinates and
// pixel positions; ToTile and ToPixel convert between the two.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// DistSq returns the squared Euclidean distance between p and q.
func (p Point) DistSq(q Point) int {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// ToTile converts a pixel position to the tile that contains it.
// Division truncates toward zero, so small negative offsets land on tile 0.
func (p Point) ToTile() Point { return Point{X: p.X / TileSize, Y: p.Y / TileSize} }

// ToPixel converts a tile coordinate to the pixel position of its corner.
func (p Point) ToPixel() Point { return Point{X: p.X * TileSize, Y: p.Y * TileSize} }

// Grid is the tile read/write capability consumed by the traffic router and
// the agents.
type Grid interface {
	Tile(p Point) Tile
	SetTile(p Point, t Tile)
	Valid(p Point) bool
	Size() (w, h int)
}

// Map holds the complete tile grid, stored row-major.
type Map struct {
	width  int
	height int
	tiles  []Tile
}

// NewMap creates a map of the given size filled with DIRT.
func NewMap(width, height int) *Map {
	return &Map{
		width:  width,
		height: height,
		tiles:  make([]Tile, width*height),
	}
}

// Size returns the map dimensions in tiles.
func (m *Map) Size() (int, int) { return m.width, m.height }

// Valid returns true if the coordinate is inside the map.
func (m *Map) Valid(p Point) bool {
	return p.X >= 0 && p.X < m.width && p.Y >= 0 && p.Y < m.height
}

// Tile returns the raw tile code at p, or DIRT if p is out of bounds.
func (m *Map) Tile(p Point) Tile {
	if !m.Valid(p) {
		return DIRT
	}
	return m.tiles[p.Y*m.width+p.X]
}

// SetTile writes a raw tile code. Out-of-bounds writes are ignored.
func (m *Map) SetTile(p Point, t Tile) {
	if !m.Valid(p) {
		return
	}
	m.tiles[p.Y*m.width+p.X] = t
}

// Fill sets every tile to t.
func (m *Map) Fill(t Tile) {
	for i := range m.tiles {
		m.tiles[i] = t
	}
}

// Each calls fn for every tile in row-major order.
func (m *Map) Each(fn func(p Point, t Tile)) {
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			fn(Point{X: x, Y: y}, m.tiles[y*m.width+x])
		}
	}
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.tiles)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, tiles=%d)", m.width, m.height, m.TileCount())
}

// ClassCounts returns a summary of the tile class distribution.
func ClassCounts(m *Map) map[string]int {
	counts := make(map[string]int)
	for _, t := range m.tiles {
		counts[TileClassName(t)]++
	}
	return counts
}
