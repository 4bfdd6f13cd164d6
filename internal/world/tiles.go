// Package world provides the tile grid, tile classification, and the coarse
// density maps shared by the traffic router and the mobile agents.
// Tile codes follow the classic city-simulator layout: the low ten bits hold
// the tile type, the high bits hold status flags.
package world

// Tile is a raw tile code: a masked type value plus status flag bits.
type Tile uint16

// Status flag bits carried in the high bits of a tile code.
const (
	PWRBIT  Tile = 0x8000 // Tile is powered
	CONDBIT Tile = 0x4000 // Tile conducts power
	BURNBIT Tile = 0x2000 // Tile can catch fire
	BULLBIT Tile = 0x1000 // Tile can be bulldozed
	ANIMBIT Tile = 0x0800 // Tile is animated
	ZONEBIT Tile = 0x0400 // Tile is the center of a zone
	LOMASK  Tile = 0x03ff // Mask for the type value

	BLBNBIT = BULLBIT | BURNBIT
)

// Masked tile type values.
const (
	DIRT         Tile = 0
	RIVER        Tile = 2
	REDGE        Tile = 3
	CHANNEL      Tile = 4
	FIRSTRIVEDGE Tile = 5
	LASTRIVEDGE  Tile = 20
	TREEBASE     Tile = 21
	LASTTREE     Tile = 36
	WOODS        Tile = 37
	WOODS5       Tile = 43
	RUBBLE       Tile = 44
	LASTRUBBLE   Tile = 47
	FLOOD        Tile = 48
	RADTILE      Tile = 52
	FIRE         Tile = 56
	LASTFIRE     Tile = 63

	ROADBASE     Tile = 64
	HBRIDGE      Tile = 64
	VBRIDGE      Tile = 65
	ROADS        Tile = 66 // Horizontal road
	ROADS2       Tile = 67 // Vertical road
	INTERSECTION Tile = 76
	BRWH         Tile = 79 // Open horizontal drawbridge over water
	BRWV         Tile = 95 // Open vertical drawbridge over water
	LASTROAD     Tile = 206

	POWERBASE   Tile = 208
	HPOWER      Tile = 208
	VPOWER      Tile = 209
	RAILHPOWERV Tile = 221
	RAILVPOWERH Tile = 222
	LASTPOWER   Tile = 222

	RAILBASE  Tile = 224
	HRAIL     Tile = 224 // Horizontal rail bridge over water
	VRAIL     Tile = 225 // Vertical rail bridge over water
	LHRAIL    Tile = 226 // Horizontal rail on land
	LVRAIL    Tile = 227 // Vertical rail on land
	LASTRAIL  Tile = 238

	RESBASE  Tile = 240
	FREEZ    Tile = 244 // Empty residential zone center
	LHTHR    Tile = 249
	RZB      Tile = 265
	HOSPITAL Tile = 409
	COMBASE  Tile = 423
	COMCLR   Tile = 427 // Empty commercial zone center
	INDBASE  Tile = 612
	INDCLR   Tile = 616 // Empty industrial zone center
	PORTBASE Tile = 693
	PORT     Tile = 698
	AIRPORT  Tile = 716
	NUCLEAR  Tile = 816
	LASTZONE Tile = 826

	TINYEXP     Tile = 860
	LASTTINYEXP Tile = 867
)

// Masked strips the flag bits, leaving the type value used for classification.
func (t Tile) Masked() Tile { return t & LOMASK }

// Zoned reports whether the tile is the center of a zone.
func (t Tile) Zoned() bool { return t&ZONEBIT != 0 }

// Burnable reports whether the tile can catch fire.
func (t Tile) Burnable() bool { return t&BURNBIT != 0 }

// Bulldozable reports whether the tile can be cleared.
func (t Tile) Bulldozable() bool { return t&BULLBIT != 0 }

// Animated reports whether the tile carries the animation flag.
func (t Tile) Animated() bool { return t&ANIMBIT != 0 }

// IsRoadOrRail reports whether a vehicle can drive over the tile: road or
// rail, but not a bare power line.
func IsRoadOrRail(t Tile) bool {
	m := t.Masked()
	if m < ROADBASE || m > LASTRAIL {
		return false
	}
	if m >= POWERBASE && m < RAILHPOWERV {
		return false
	}
	return true
}

// IsRoadway reports whether a masked value lies in the road range used for
// traffic density accounting (roads and bridges, not power or rail).
func IsRoadway(m Tile) bool {
	return m >= ROADBASE && m < POWERBASE
}

// IsRail reports whether a masked value is a track a train can follow.
func IsRail(m Tile) bool {
	return (m >= RAILBASE && m <= LASTRAIL) || m == RAILVPOWERH || m == RAILHPOWERV
}

// IsWet reports whether a masked value is a structure laid over water:
// a power line, rail segment, or open drawbridge.
func IsWet(m Tile) bool {
	switch m {
	case POWERBASE, POWERBASE + 1, RAILBASE, RAILBASE + 1, BRWH, BRWV:
		return true
	}
	return false
}

// IsWater reports whether a masked value is open water or river edge.
func IsWater(m Tile) bool {
	return m >= RIVER && m <= LASTRIVEDGE
}

// IsTree reports whether a masked value is woodland.
func IsTree(m Tile) bool {
	return m >= TREEBASE && m <= WOODS5
}

// ZoneCategory identifies residential, commercial, and industrial zones.
type ZoneCategory uint8

const (
	Residential ZoneCategory = iota
	Commercial
	Industrial
)

// String returns a lower-case name for the category.
func (c ZoneCategory) String() string {
	switch c {
	case Residential:
		return "residential"
	case Commercial:
		return "commercial"
	case Industrial:
		return "industrial"
	default:
		return "unknown"
	}
}

// CategoryOf classifies a zone-center tile. Returns false for tiles that are
// not residential, commercial, or industrial zone centers.
func CategoryOf(t Tile) (ZoneCategory, bool) {
	if !t.Zoned() {
		return 0, false
	}
	m := t.Masked()
	switch {
	case m >= RESBASE && m < HOSPITAL:
		return Residential, true
	case m >= COMBASE && m < INDBASE:
		return Commercial, true
	case m >= INDBASE && m < PORTBASE:
		return Industrial, true
	}
	return 0, false
}

// TileClassName returns a coarse human-readable class for a tile.
func TileClassName(t Tile) string {
	m := t.Masked()
	switch {
	case m == DIRT:
		return "Dirt"
	case m == CHANNEL:
		return "Channel"
	case IsWater(m):
		return "Water"
	case IsTree(m):
		return "Woods"
	case m >= RUBBLE && m <= LASTRUBBLE:
		return "Rubble"
	case m >= FIRE && m <= LASTFIRE:
		return "Fire"
	case IsRoadway(m):
		return "Road"
	case m >= POWERBASE && m <= LASTPOWER:
		return "Power"
	case m >= RAILBASE && m <= LASTRAIL:
		return "Rail"
	case m >= RESBASE && m <= LASTZONE:
		return "Zone"
	case m >= TINYEXP && m <= LASTTINYEXP:
		return "Explosion"
	default:
		return "Other"
	}
}
