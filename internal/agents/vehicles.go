package agents

import (
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

// Trains move on a four-way grid: north, east, south, west, plus idle.
const trainIdle = 4

var (
	trainLook  = [4]world.Point{{X: 0, Y: -16}, {X: 16, Y: 0}, {X: 0, Y: 16}, {X: -16, Y: 0}}
	trainMove  = [5]world.Point{{X: 0, Y: -4}, {X: 4, Y: 0}, {X: 0, Y: 4}, {X: -4, Y: 0}, {X: 0, Y: 0}}
	trainFrame = [5]int{0, 1, 0, 1, 4}
)

// updateTrain follows the track. Frames 2 and 3 show a curve and last one
// tick; frame 4 shows the train on a bridge.
func (r *Registry) updateTrain(a *Agent, s *TrainState) {
	if a.Frame == 2 || a.Frame == 3 {
		a.Frame = trainFrame[s.Dir]
	}
	a.Position = a.Position.Add(trainMove[s.Dir])

	start := r.env.Rand.Range(0, 4)
	for z := start; z < start+4; z++ {
		dir := z % 4
		if s.Dir != trainIdle && dir == (s.Dir+2)%4 {
			continue
		}

		m, ok := r.maskedAt(a.Position.Add(trainLook[dir]).Add(world.Pt(48, 0)))
		if !ok || !world.IsRail(m) {
			continue
		}

		switch {
		case s.Dir != dir && s.Dir != trainIdle:
			if s.Dir+dir == 3 {
				a.Frame = 2
			} else {
				a.Frame = 3
			}
		default:
			a.Frame = trainFrame[dir]
		}
		if m == world.HRAIL || m == world.VRAIL {
			a.Frame = 4
		}
		s.Dir = dir
		return
	}

	if s.Dir == trainIdle {
		a.Frame = 0
		return
	}
	s.Dir = trainIdle
}

var heliMove = [9]world.Point{
	{X: 0, Y: 0}, {X: 0, Y: -5}, {X: 3, Y: -3}, {X: 5, Y: 0}, {X: 3, Y: 3},
	{X: 0, Y: 5}, {X: -3, Y: 3}, {X: -5, Y: 0}, {X: -3, Y: -3},
}

// updateHelicopter patrols until its fuel runs out, then chases a monster or
// tornado, or heads home and lands.
func (r *Registry) updateHelicopter(a *Agent, s *HelicopterState) {
	if s.SoundCount > 0 {
		s.SoundCount--
	}
	if s.Count > 0 {
		s.Count--
	}

	if s.Count == 0 {
		if monster, ok := r.lookupActive(Monster); ok {
			a.Destination = monster.Position
		} else if tornado, ok := r.lookupActive(Tornado); ok {
			a.Destination = tornado.Destination
		} else {
			a.Destination = a.Origin
		}

		if _, dist := direction(a.Position, a.Origin); dist < 30 {
			a.Active = false
			return
		}
	}

	if s.SoundCount == 0 {
		r.reportTraffic(a, s)
	}

	if r.cycle&3 == 0 {
		heading, _ := direction(a.Position, a.Destination)
		a.Frame = turnTo(a.Frame, heading)
	}
	a.Position = a.Position.Add(heliMove[a.Frame%len(heliMove)])
}

// reportTraffic samples the traffic map below the helicopter and now and
// then reports heavy congestion.
func (r *Registry) reportTraffic(a *Agent, s *HelicopterState) {
	if r.env.Traffic == nil {
		return
	}
	tile := world.Pt((a.Position.X+48)>>4, a.Position.Y>>4)
	if tile.X < 0 || tile.Y < 0 || !r.env.Grid.Valid(tile) {
		return
	}
	cell := r.env.Traffic.Cell(tile)
	if !r.env.Traffic.Valid(cell) {
		return
	}
	if r.env.Traffic.Get(cell) > 170 && r.env.Rand.Range(0, 7) == 0 {
		r.env.Notify.Dispatch(notify.HeavyTrafficReported, world.Pt(cell.X*2+1, cell.Y*2+1))
		r.env.Audio.Play("city", "HeavyTraffic")
		s.SoundCount = 200
	}
}

// Airplane frames 1-8 are headings; 9-11 are the takeoff roll.
var planeMove = [12]world.Point{
	{X: 0, Y: 0}, {X: 0, Y: -8}, {X: 6, Y: -6}, {X: 8, Y: 0}, {X: 6, Y: 6}, {X: 0, Y: 8},
	{X: -6, Y: 6}, {X: -8, Y: 0}, {X: -6, Y: -6}, {X: 8, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 0},
}

func (r *Registry) updateAirplane(a *Agent) {
	z := a.Frame
	if r.cycle%5 == 0 {
		if z > 8 {
			z--
			if z < 9 {
				z = 3
			}
		} else {
			heading, _ := direction(a.Position, a.Destination)
			z = turnTo(z, heading)
		}
		a.Frame = z
	}

	if _, dist := direction(a.Position, a.Destination); dist < 50 {
		a.Destination = r.randomFlightTarget()
	}

	if r.env.Options.Disasters {
		for _, other := range r.agents {
			if other == a || !other.Active {
				continue
			}
			if other.Type != Airplane && other.Type != Helicopter {
				continue
			}
			if Collided(a, other) {
				r.Explode(a)
				r.Explode(other)
			}
		}
	}

	a.Position = a.Position.Add(planeMove[z%len(planeMove)])
	if !r.positionValid(a) {
		a.Active = false
	}
}

var (
	shipLook = [9]world.Point{
		{X: 0, Y: 0}, {X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
		{X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1},
	}
	shipMove = [9]world.Point{
		{X: 0, Y: 0}, {X: 0, Y: -2}, {X: 2, Y: -2}, {X: 2, Y: 0}, {X: 2, Y: 2},
		{X: 0, Y: 2}, {X: -2, Y: 2}, {X: -2, Y: 0}, {X: -2, Y: -2},
	}
)

// shipDrifting marks a ship that found no water to steer into.
const shipDrifting = 10

// navigable reports whether a ship may stay on a tile it has sailed onto.
func navigable(m world.Tile) bool {
	switch m {
	case world.RIVER, world.CHANNEL, world.POWERBASE, world.POWERBASE + 1,
		world.RAILBASE, world.RAILBASE + 1, world.BRWH, world.BRWV:
		return true
	}
	return false
}

// wakeCrossing lets a ship turn back across a low power line or rail
// bridge it has just passed under.
func wakeCrossing(m world.Tile, reverse, heading int) bool {
	z := reverse + 4
	if z > 8 {
		z -= 8
	}
	if heading != z {
		return false
	}
	switch m {
	case world.POWERBASE, world.POWERBASE + 1, world.RAILBASE, world.RAILBASE + 1:
		return true
	}
	return false
}

func (r *Registry) updateShip(a *Agent, s *ShipState) {
	if s.SoundCount > 0 {
		s.SoundCount--
	}
	if s.SoundCount == 0 {
		if r.env.Rand.Range(0, 3) == 1 {
			r.env.Audio.Play("city", "HonkHonk-Low")
		}
		s.SoundCount = 200
	}

	if s.Count > 0 {
		s.Count--
	}

	under := world.RIVER
	if s.Count == 0 {
		s.Count = 9
		if a.Frame != s.NewDir {
			a.Frame = turnTo(a.Frame, s.NewDir)
			return
		}

		start := r.env.Rand.Range(0, 7)
		found := false
		for i := start; i < start+8; i++ {
			heading := (i & 7) + 1
			if heading == s.Dir {
				continue
			}
			ahead := world.Pt(
				(a.Position.X+a.Hot.X-1)/world.TileSize,
				(a.Position.Y+a.Hot.Y)/world.TileSize,
			).Add(shipLook[heading])
			if !r.env.Grid.Valid(ahead) {
				continue
			}
			under = r.env.Grid.Tile(ahead).Masked()
			if under == world.CHANNEL || under == world.BRWH || under == world.BRWV ||
				wakeCrossing(under, s.Dir, heading) {
				s.NewDir = heading
				a.Frame = turnTo(a.Frame, s.NewDir)
				s.Dir = heading + 4
				if s.Dir > 8 {
					s.Dir -= 8
				}
				found = true
				break
			}
		}
		if !found {
			s.Dir = shipDrifting
			s.NewDir = r.env.Rand.Range(0, 7) + 1
		}
	} else if a.Frame == s.NewDir {
		a.Position = a.Position.Add(shipMove[a.Frame%len(shipMove)])
	}

	if !r.positionValid(a) {
		a.Active = false
		return
	}
	if navigable(under) {
		return
	}

	r.Explode(a)
	r.destroyTile(a.Position.Add(world.Pt(48, 0)))
}
