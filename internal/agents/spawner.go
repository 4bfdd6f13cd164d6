package agents

import (
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

// monsterSpawnTries bounds the search for a river tile to raise a monster
// from.
const monsterSpawnTries = 300

// GenerateTrain may start a train at a rail tile once the city has more than
// 20 residents and no train is running.
func (r *Registry) GenerateTrain(tile world.Point, population int) {
	if population <= 20 {
		return
	}
	if _, ok := r.lookupActive(Train); ok {
		return
	}
	if r.env.Rand.Range(0, 25) != 0 {
		return
	}
	r.Spawn(Train, tile.ToPixel().Add(world.Pt(-39, 6)))
}

// GenerateShip scans one randomly chosen map edge for a channel tile and
// launches a ship there. Nothing is launched while a ship is sailing.
func (r *Registry) GenerateShip() (*Agent, bool) {
	if _, ok := r.lookupActive(Ship); ok {
		return nil, false
	}
	w, h := r.env.Grid.Size()

	var candidates []world.Point
	switch r.env.Rand.Range(0, 3) {
	case 0:
		for x := 4; x < w-2; x++ {
			candidates = append(candidates, world.Pt(x, 0))
		}
	case 1:
		for y := 1; y < h-2; y++ {
			candidates = append(candidates, world.Pt(0, y))
		}
	case 2:
		for x := 4; x < w-2; x++ {
			candidates = append(candidates, world.Pt(x, h-2))
		}
	case 3:
		for y := 1; y < h-2; y++ {
			candidates = append(candidates, world.Pt(w-2, y))
		}
	}

	for _, p := range candidates {
		if r.env.Grid.Tile(p) == world.CHANNEL {
			return r.MakeShipAt(p), true
		}
	}
	return nil, false
}

// MakeShipAt launches a ship whose hot spot sits on the given tile.
func (r *Registry) MakeShipAt(tile world.Point) *Agent {
	return r.Spawn(Ship, tile.ToPixel().Sub(world.Pt(47, 0)))
}

// GenerateMonster raises a monster from a random river tile, or from the
// middle of the map if none turns up.
func (r *Registry) GenerateMonster() *Agent {
	if m, ok := r.Lookup(Monster); ok {
		s := m.State.(*MonsterState)
		s.SoundCount = 1
		s.Count = 1000
		m.Destination = r.pollutionTarget()
	}

	w, h := r.env.Grid.Size()
	for i := 0; i < monsterSpawnTries; i++ {
		p := world.Pt(r.env.Rand.Range(0, w-20)+10, r.env.Rand.Range(0, h-10)+5)
		if !r.env.Grid.Valid(p) {
			continue
		}
		if t := r.env.Grid.Tile(p); t == world.RIVER || t == world.RIVER|world.BULLBIT {
			return r.makeMonsterAt(p)
		}
	}
	return r.makeMonsterAt(world.Pt(w/2, h/2))
}

func (r *Registry) makeMonsterAt(tile world.Point) *Agent {
	a := r.Spawn(Monster, tile.ToPixel().Add(world.Pt(48, 0)))
	r.env.Notify.Dispatch(notify.MonsterReported, tile.Add(world.Pt(5, 0)))
	return a
}

// GenerateHelicopter launches a helicopter from a tile unless one is flying.
func (r *Registry) GenerateHelicopter(tile world.Point) {
	if _, ok := r.lookupActive(Helicopter); ok {
		return
	}
	r.Spawn(Helicopter, tile.ToPixel().Add(world.Pt(0, 30)))
}

// GenerateAirplane launches an airplane from a tile unless one is flying.
func (r *Registry) GenerateAirplane(tile world.Point) {
	if _, ok := r.lookupActive(Airplane); ok {
		return
	}
	r.Spawn(Airplane, tile.ToPixel().Add(world.Pt(48, 12)))
}

// GenerateTornado touches down a tornado on a random inland tile.
func (r *Registry) GenerateTornado() *Agent {
	w, h := r.env.Grid.Size()
	tile := world.Pt(r.env.Rand.Range(1, w-2), r.env.Rand.Range(1, h-2))
	a := r.Spawn(Tornado, tile.ToPixel())
	r.env.Notify.Dispatch(notify.TornadoReported, tile)
	return a
}

// GenerateExplosion sets off an explosion in the middle of a tile.
func (r *Registry) GenerateExplosion(tile world.Point) (*Agent, bool) {
	if !r.env.Grid.Valid(tile) {
		return nil, false
	}
	return r.MakeExplosionAt(tile.ToPixel().Add(world.Pt(8, 8))), true
}
