package agents

import (
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

// tileOf maps a pixel to its tile, or false when it falls off the map.
func (r *Registry) tileOf(pixel world.Point) (world.Point, bool) {
	if pixel.X < 0 || pixel.Y < 0 {
		return world.Point{}, false
	}
	tile := pixel.ToTile()
	return tile, r.env.Grid.Valid(tile)
}

// destroyTile wrecks whatever stands under pixel. Bridges collapse into
// river, zone centers take a growth penalty (and large zones explode), wet
// structures revert to water, and everything else becomes rubble.
func (r *Registry) destroyTile(pixel world.Point) {
	tile, ok := r.tileOf(pixel)
	if !ok {
		return
	}
	raw := r.env.Grid.Tile(tile)
	m := raw.Masked()
	if m < world.TREEBASE {
		return
	}

	if !raw.Burnable() && m >= world.ROADBASE && m <= world.LASTROAD {
		r.env.Grid.SetTile(tile, world.RIVER)
		return
	}
	if raw.Zoned() {
		r.fireZone(tile, raw)
		if m > world.RZB {
			r.MakeExplosionAt(pixel)
		}
	}
	if world.IsWet(m) {
		r.env.Grid.SetTile(tile, world.RIVER)
		return
	}

	rubble := world.LASTTINYEXP - 3
	if r.env.Options.Animations {
		rubble = world.TINYEXP
	}
	r.env.Grid.SetTile(tile, rubble|world.BULLBIT|world.ANIMBIT)
}

// fireZone cuts the local growth rate and makes the roads around a burning
// zone bulldozable.
func (r *Registry) fireZone(tile world.Point, raw world.Tile) {
	if r.env.Growth != nil {
		cell := r.env.Growth.Cell(tile)
		r.env.Growth.Set(cell, r.env.Growth.Get(cell)-20)
	}

	extent := 2
	switch m := raw.Masked(); {
	case m == world.AIRPORT:
		extent = 5
	case m >= world.PORTBASE:
		extent = 4
	}

	for dx := -1; dx < extent; dx++ {
		for dy := -1; dy < extent; dy++ {
			p := tile.Add(world.Pt(dx, dy))
			if !r.env.Grid.Valid(p) {
				continue
			}
			if t := r.env.Grid.Tile(p); t.Masked() >= world.ROADBASE {
				r.env.Grid.SetTile(p, t|world.BULLBIT)
			}
		}
	}
}

// startFire ignites the tile under pixel. Zone tiles never ignite; other
// tiles ignite when burnable or when the masked value is empty dirt.
func (r *Registry) startFire(pixel world.Point) {
	tile, ok := r.tileOf(pixel)
	if !ok {
		return
	}
	raw := r.env.Grid.Tile(tile)
	if !raw.Burnable() && raw.Masked() != world.DIRT {
		return
	}
	if raw.Zoned() {
		return
	}
	fire := world.FIRE + world.Tile(r.env.Rand.Range(0, 3))
	r.env.Grid.SetTile(tile, fire|world.ANIMBIT)
}

var crashKinds = map[Type]notify.Kind{
	Airplane:   notify.PlaneCrashed,
	Ship:       notify.ShipWrecked,
	Train:      notify.TrainCrashed,
	Helicopter: notify.HelicopterCrashed,
}

// Explode destroys an agent: it is deactivated, an explosion appears at its
// hot spot, and vehicles report a crash.
func (r *Registry) Explode(a *Agent) {
	a.Active = false
	hot := a.HotSpot()
	r.MakeExplosionAt(hot)

	if kind, ok := crashKinds[a.Type]; ok {
		r.crash = hot.ToTile()
		r.env.Notify.Dispatch(kind, r.crash)
	}
	r.env.Audio.Play("city", "Explosion-High")
}

// MakeExplosionAt starts an explosion centered on pixel.
func (r *Registry) MakeExplosionAt(pixel world.Point) *Agent {
	return r.Spawn(Explosion, pixel.Sub(world.Pt(40, 16)))
}

// collideWith explodes every active vehicle within reach of a.
func (r *Registry) collideWith(a *Agent) {
	for _, other := range r.agents {
		switch other.Type {
		case Airplane, Helicopter, Ship, Train:
			if Collided(a, other) {
				r.Explode(other)
			}
		}
	}
}
