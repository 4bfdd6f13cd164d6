package agents

import (
	"fmt"
	"iter"

	"github.com/talgya/mini-city/internal/assets"
	"github.com/talgya/mini-city/internal/entropy"
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

// Options toggles optional agent behavior.
type Options struct {
	Disasters  bool // Airplanes collide with each other and with helicopters
	Animations bool // Destroyed tiles start an animated explosion sequence
}

// Pollution is the density map monsters are drawn to.
type Pollution interface {
	PeakTile() world.Point
}

// Env is everything the agents read or write outside their own slots.
type Env struct {
	Grid      world.Grid
	Traffic   world.Density
	Growth    world.Density
	Pollution Pollution
	Rand      entropy.Source
	Notify    notify.Sink
	Audio     notify.AudioSink
	Frames    assets.FrameCounter
	Options   Options
}

// Registry is the ordered collection of agents. Insertion order is the
// update order.
type Registry struct {
	env    Env
	agents []*Agent
	nextID AgentID
	cycle  int
	crash  world.Point

	stepping bool
}

// NewRegistry creates an empty registry bound to env. Nil sinks are replaced
// with no-ops.
func NewRegistry(env Env) *Registry {
	if env.Notify == nil {
		env.Notify = notify.Nop{}
	}
	if env.Audio == nil {
		env.Audio = notify.Nop{}
	}
	if env.Frames == nil {
		env.Frames = assets.DefaultTable()
	}
	return &Registry{env: env, nextID: 1}
}

// Options returns the current agent options.
func (r *Registry) Options() Options { return r.env.Options }

// SetOptions replaces the agent options.
func (r *Registry) SetOptions(o Options) { r.env.Options = o }

// Cycle returns the number of update passes run so far.
func (r *Registry) Cycle() int { return r.cycle }

// CrashPosition returns the tile of the most recent vehicle crash.
func (r *Registry) CrashPosition() world.Point { return r.crash }

// Len returns the number of slots, active or not.
func (r *Registry) Len() int { return len(r.agents) }

// All returns every slot in insertion order.
func (r *Registry) All() []*Agent { return r.agents }

// Spawn places an agent of type t at pixel position pos. Singleton types
// reinitialize their existing slot; explosions reuse an inactive explosion
// slot or append. An unknown type, or a type without frames, panics.
func (r *Registry) Spawn(t Type, pos world.Point) *Agent {
	if !t.Valid() {
		panic(fmt.Errorf("agents: spawn of %v: %w", t, ErrUnknownType))
	}
	frames, err := r.env.Frames.FrameCount(t.String())
	if err != nil {
		panic(fmt.Errorf("agents: spawn of %v: %w", t, err))
	}

	a := r.slotFor(t)
	if a == nil {
		a = &Agent{ID: r.nextID, Type: t}
		r.nextID++
		r.agents = append(r.agents, a)
	}
	a.Frames = frames
	r.initAgent(a, pos)
	a.fresh = r.stepping
	return a
}

func (r *Registry) slotFor(t Type) *Agent {
	for _, a := range r.agents {
		if a.Type != t {
			continue
		}
		if t.Singleton() || !a.Active {
			return a
		}
	}
	return nil
}

func (r *Registry) initAgent(a *Agent, pos world.Point) {
	w, h := r.env.Grid.Size()

	a.Position = pos
	a.Origin = world.Point{}
	a.Destination = world.Point{}
	a.Frame = 0
	a.Speed = 100
	a.Active = true

	switch a.Type {
	case Train:
		a.Size = world.Pt(32, 32)
		a.Hot = world.Pt(40, -8)
		a.Frame = 1
		a.State = &TrainState{Dir: trainIdle}

	case Ship:
		a.Size = world.Pt(48, 48)
		a.Hot = world.Pt(48, 0)
		switch {
		case pos.X < 64:
			a.Frame = 2
		case pos.X >= (w-4)*world.TileSize:
			a.Frame = 6
		case pos.Y < 64:
			a.Frame = 4
		case pos.Y >= (h-4)*world.TileSize:
			a.Frame = 0
		default:
			a.Frame = 2
		}
		a.State = &ShipState{NewDir: a.Frame, Count: 1}

	case Monster:
		a.Size = world.Pt(48, 48)
		a.Hot = world.Pt(40, 16)
		a.Destination = r.pollutionTarget()
		a.Origin = pos
		midX, midY := w*world.TileSize/2, h*world.TileSize/2
		switch {
		case pos.X > midX && pos.Y > midY:
			a.Frame = 10
		case pos.X > midX:
			a.Frame = 7
		case pos.Y > midY:
			a.Frame = 1
		default:
			a.Frame = 4
		}
		a.State = &MonsterState{Count: 1000}

	case Helicopter:
		a.Size = world.Pt(32, 32)
		a.Hot = world.Pt(40, -8)
		a.Destination = world.Pt(r.env.Rand.Range(0, w-1), r.env.Rand.Range(0, h-1)).ToPixel()
		a.Origin = pos.Add(world.Pt(-30, 0))
		a.Frame = 5
		a.State = &HelicopterState{Count: 1500}

	case Airplane:
		a.Size = world.Pt(48, 48)
		a.Hot = world.Pt(48, 16)
		a.Destination = r.randomFlightTarget()
		a.State = &AirplaneState{}

	case Tornado:
		a.Size = world.Pt(48, 48)
		a.Hot = world.Pt(40, 36)
		a.State = &TornadoState{Count: 200}

	case Explosion:
		a.Size = world.Pt(48, 48)
		a.Hot = world.Pt(40, 16)
		a.Frames = explosionFrames
		a.State = &ExplosionState{}
	}
}

func (r *Registry) pollutionTarget() world.Point {
	if r.env.Pollution == nil {
		return world.Point{}
	}
	return r.env.Pollution.PeakTile().ToPixel()
}

// randomFlightTarget picks a point anywhere on the map or up to 50px past
// its edges.
func (r *Registry) randomFlightTarget() world.Point {
	w, h := r.env.Grid.Size()
	return world.Pt(
		r.env.Rand.Range(0, w*world.TileSize+100)-50,
		r.env.Rand.Range(0, h*world.TileSize+100)-50,
	)
}

// Lookup returns the first agent of type t, active or not.
func (r *Registry) Lookup(t Type) (*Agent, bool) {
	for _, a := range r.agents {
		if a.Type == t {
			return a, true
		}
	}
	return nil, false
}

// lookupActive returns the first active agent of type t.
func (r *Registry) lookupActive(t Type) (*Agent, bool) {
	a, ok := r.Lookup(t)
	if !ok || !a.Active {
		return nil, false
	}
	return a, true
}

// Deactivate clears the active flag. The slot stays for reuse.
func (r *Registry) Deactivate(a *Agent) { a.Active = false }

// Active yields the active agents in insertion order. Each range over the
// sequence starts from the first slot again.
func (r *Registry) Active() iter.Seq[*Agent] {
	return func(yield func(*Agent) bool) {
		for _, a := range r.agents {
			if !a.Active {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}

// CountActive returns active agents per type.
func (r *Registry) CountActive() map[Type]int {
	counts := make(map[Type]int)
	for a := range r.Active() {
		counts[a.Type]++
	}
	return counts
}

// Step runs one update pass: every agent active at its turn is advanced once,
// in insertion order. Agents spawned during the pass first move on the next.
func (r *Registry) Step() {
	r.cycle++
	r.stepping = true
	n := len(r.agents)
	for i := 0; i < n; i++ {
		a := r.agents[i]
		if !a.Active || a.fresh {
			continue
		}
		r.update(a)
	}
	r.stepping = false
	for _, a := range r.agents {
		a.fresh = false
	}
}

func (r *Registry) update(a *Agent) {
	switch s := a.State.(type) {
	case *TrainState:
		r.updateTrain(a, s)
	case *HelicopterState:
		r.updateHelicopter(a, s)
	case *AirplaneState:
		r.updateAirplane(a)
	case *ShipState:
		r.updateShip(a, s)
	case *MonsterState:
		r.updateMonster(a, s)
	case *TornadoState:
		r.updateTornado(a, s)
	case *ExplosionState:
		r.updateExplosion(a)
	}
}

// TrafficHotspot steers an active helicopter toward a congested pixel.
func (r *Registry) TrafficHotspot(pixel world.Point) {
	if heli, ok := r.lookupActive(Helicopter); ok {
		heli.Destination = pixel
	}
}
