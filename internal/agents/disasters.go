package agents

import (
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

// Monster frames come in groups of three per heading: 1-12 are the four
// orthogonal approach headings, 13-16 the diagonal rampage.
var (
	monsterMove = [5]world.Point{{X: 2, Y: -2}, {X: 2, Y: 2}, {X: -2, Y: 2}, {X: -2, Y: -2}, {X: 0, Y: 0}}

	monsterTurnLeft  = [4]int{0, 1, 2, 3}
	monsterTurnRight = [4]int{1, 2, 3, 0}

	rampageLeft  = [4]int{2, 5, 8, 11}
	rampageRight = [4]int{11, 2, 5, 8}
)

func (r *Registry) updateMonster(a *Agent, s *MonsterState) {
	if s.SoundCount > 0 {
		s.SoundCount--
	}

	d := (a.Frame - 1) / 3
	var z int
	if d < 4 {
		z = (a.Frame - 1) % 3
		switch z {
		case 2:
			s.Step = 0
		case 0:
			s.Step = 1
		}
		if s.Step != 0 {
			z++
		} else {
			z--
		}

		if _, dist := direction(a.Position, a.Destination); dist < 60 {
			if s.Returning {
				a.Active = false
				return
			}
			s.Returning = true
			a.Destination = a.Origin
		}

		heading, _ := direction(a.Position, a.Destination)
		c := (heading - 1) / 2
		if c != d && r.env.Rand.Range(0, 10) == 0 {
			if r.env.Rand.Range(0, 1) == 1 {
				z = monsterTurnLeft[d]
			} else {
				z = monsterTurnRight[d]
			}
			d = 4
			if s.SoundCount == 0 {
				r.env.Audio.Play("city", "Monster")
				s.SoundCount = 50 + r.env.Rand.Range(0, 100)
			}
		}
	} else {
		d = 4
		z = (a.Frame - 13) & 3
		if r.env.Rand.Range(0, 3) == 0 {
			if r.env.Rand.Range(0, 1) == 1 {
				z = rampageLeft[z]
			} else {
				z = rampageRight[z]
			}
			d = (z - 1) / 3
			z = (z - 1) % 3
		}
	}

	a.Frame = clamp(d*3+z+1, 0, 16)
	a.Position = a.Position.Add(monsterMove[d])

	if s.Count > 0 {
		s.Count--
	}

	m, ok := r.maskedAt(a.HotSpot())
	if !ok || (m == world.RIVER && s.Count != 0) {
		a.Active = false
	}

	r.collideWith(a)
	r.destroyTile(a.Position.Add(world.Pt(48, 16)))
}

var tornadoJitter = [6]world.Point{
	{X: 2, Y: -2}, {X: 3, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 3}, {X: -2, Y: 2}, {X: -3, Y: 0},
}

func (r *Registry) updateTornado(a *Agent, s *TornadoState) {
	a.Frame++
	if a.Frame >= a.Frames {
		a.Frame = 0
	}

	s.Count--
	if s.Count <= 0 {
		a.Active = false
	}

	r.collideWith(a)

	a.Position = a.Position.Add(tornadoJitter[r.env.Rand.Range(0, 5)])
	if !r.positionValid(a) {
		a.Active = false
	}
	if s.Count != 0 && r.env.Rand.Range(0, 500) == 0 {
		a.Active = false
	}

	r.destroyTile(a.Position.Add(world.Pt(48, 40)))
}

// explosionFrames is the fixed length of an explosion, whatever frame count
// the asset table carries.
const explosionFrames = 6

// explosionFires are the points, relative to an explosion's position, that
// catch fire once it burns out.
var explosionFires = [5]world.Point{
	{X: 40, Y: 16}, {X: 24, Y: 0}, {X: 56, Y: 0}, {X: 24, Y: 32}, {X: 56, Y: 32},
}

func (r *Registry) updateExplosion(a *Agent) {
	if a.Frame == 0 {
		r.env.Audio.Play("city", "Explosion-High")
		at := world.Pt(a.Position.X/world.TileSize+3, a.Position.Y/world.TileSize)
		r.env.Notify.Dispatch(notify.ExplosionReported, at)
	}

	a.Frame++
	if a.Frame < explosionFrames {
		return
	}

	a.Frame = 0
	a.Active = false
	for _, off := range explosionFires {
		r.startFire(a.Position.Add(off))
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
