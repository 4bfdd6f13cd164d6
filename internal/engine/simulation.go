// Simulation ties together the map, the density maps, the agents, and the
// traffic router, and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/mini-city/internal/agents"
	"github.com/talgya/mini-city/internal/assets"
	"github.com/talgya/mini-city/internal/entropy"
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/traffic"
	"github.com/talgya/mini-city/internal/world"
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Config tunes the per-tick systems.
type Config struct {
	Disasters  bool
	Animations bool

	// One-in-N odds per tick; 0 disables.
	TornadoOdds int
	MonsterOdds int
	ShipOdds    int

	TrafficSweepEvery int // Ticks between zone traffic sweeps; 0 disables
}

// Deps are the collaborators a Simulation is built from.
type Deps struct {
	Map    *world.Map
	Zones  []world.ZoneSeed
	Rand   entropy.Source
	Frames assets.FrameCounter
	Audio  notify.AudioSink
}

// Simulation holds the complete world state. It has a single writer: the
// engine's tick callback, or whoever holds the engine lock.
type Simulation struct {
	Map       *world.Map
	Traffic   *world.DensityMap
	Pollution *world.DensityMap
	Growth    *world.DensityMap
	Agents    *agents.Registry
	Router    *traffic.Router
	Zones     []world.ZoneSeed

	Events   []Event // Most recent notifications, oldest first
	LastTick uint64  // Most recent tick processed
	Paused   bool

	Stats SimStats

	cfg     Config
	rand    entropy.Source
	sinks   notify.Fanout
	pending []Event // Dispatched since the last TakePending
}

// Event is a notification stamped with the tick it happened on.
type Event struct {
	Tick        uint64      `json:"tick"`
	Kind        notify.Kind `json:"kind"`
	At          world.Point `json:"at"`
	Description string      `json:"description"`
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	ActiveAgents map[string]int `json:"active_agents"`
	Zones        map[string]int `json:"zones"`
	Population   int            `json:"population"`
	TrafficPeak  int            `json:"traffic_peak"`
	Routes       RouteStats     `json:"routes"`
	Notices      int            `json:"notices"`
}

// RouteStats counts traffic router outcomes over the run.
type RouteStats struct {
	Found       int `json:"found"`
	NotFound    int `json:"not_found"`
	NoTransport int `json:"no_transport"`
}

// NewSimulation builds a simulation around a generated map.
func NewSimulation(d Deps, cfg Config) *Simulation {
	w, h := d.Map.Size()
	s := &Simulation{
		Map:       d.Map,
		Traffic:   world.NewTrafficMap(w, h),
		Pollution: world.NewTrafficMap(w, h),
		Growth:    world.NewGrowthMap(w, h),
		Zones:     d.Zones,
		cfg:       cfg,
		rand:      d.Rand,
	}

	s.Agents = agents.NewRegistry(agents.Env{
		Grid:      s.Map,
		Traffic:   s.Traffic,
		Growth:    s.Growth,
		Pollution: s.Pollution,
		Rand:      d.Rand,
		Notify:    s,
		Audio:     d.Audio,
		Frames:    d.Frames,
		Options: agents.Options{
			Disasters:  cfg.Disasters,
			Animations: cfg.Animations,
		},
	})
	s.Router = traffic.NewRouter(s.Map, s.Traffic, d.Rand, s.Agents)

	s.measurePollution()
	s.updateStats()
	return s
}

// AddSink forwards every future notification to sink as well.
func (s *Simulation) AddSink(sink notify.Sink) {
	s.sinks = append(s.sinks, sink)
}

// Dispatch records a notification in the event log and forwards it.
func (s *Simulation) Dispatch(kind notify.Kind, at world.Point) {
	e := Event{
		Tick:        s.LastTick,
		Kind:        kind,
		At:          at,
		Description: describe(kind, at),
	}
	s.Events = append(s.Events, e)
	s.pending = append(s.pending, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
	if len(s.pending) > maxEvents {
		s.pending = s.pending[len(s.pending)-maxEvents:]
	}
	s.Stats.Notices++
	s.sinks.Dispatch(kind, at)
}

// TakePending returns the events dispatched since the previous call.
func (s *Simulation) TakePending() []Event {
	out := s.pending
	s.pending = nil
	return out
}

// RecentEvents returns up to n of the newest events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	if n <= 0 || n > len(s.Events) {
		n = len(s.Events)
	}
	return append([]Event(nil), s.Events[len(s.Events)-n:]...)
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// Config returns the tuning the simulation runs with.
func (s *Simulation) Config() Config { return s.cfg }

// SetDisasters toggles random disasters and airplane collisions.
func (s *Simulation) SetDisasters(on bool) {
	s.cfg.Disasters = on
	opts := s.Agents.Options()
	opts.Disasters = on
	s.Agents.SetOptions(opts)
}

// Step runs one tick. While paused it leaves every agent and map untouched.
func (s *Simulation) Step(tick uint64) {
	if s.Paused {
		return
	}
	s.LastTick = tick

	s.scheduleDisasters()
	s.Agents.Step()

	if every := s.cfg.TrafficSweepEvery; every > 0 && tick%uint64(every) == 0 {
		s.sweepZones()
	}
}

// TickHour logs a summary of the last sim-hour.
func (s *Simulation) TickHour(tick uint64) {
	s.updateStats()
	slog.Debug("hourly report",
		"tick", tick,
		"time", SimTime(tick),
		"agents", s.Stats.ActiveAgents,
		"traffic_peak", s.Stats.TrafficPeak,
	)
}

func (s *Simulation) scheduleDisasters() {
	if s.cfg.ShipOdds > 0 && s.rand.Range(0, s.cfg.ShipOdds-1) == 0 {
		s.Agents.GenerateShip()
	}
	if !s.cfg.Disasters {
		return
	}
	if s.cfg.TornadoOdds > 0 && s.rand.Range(0, s.cfg.TornadoOdds-1) == 0 {
		s.Agents.GenerateTornado()
	}
	if s.cfg.MonsterOdds > 0 && s.rand.Range(0, s.cfg.MonsterOdds-1) == 0 {
		s.Agents.GenerateMonster()
	}
}

// TriggerDisaster starts a disaster on demand. Tile is used by explosions.
func (s *Simulation) TriggerDisaster(kind string, tile world.Point) error {
	switch kind {
	case "monster":
		s.Agents.GenerateMonster()
	case "tornado":
		s.Agents.GenerateTornado()
	case "explosion":
		if _, ok := s.Agents.GenerateExplosion(tile); !ok {
			return fmt.Errorf("explosion at %v: tile out of bounds", tile)
		}
	default:
		return fmt.Errorf("unknown disaster %q", kind)
	}
	slog.Debug("disaster triggered", "kind", kind, "tick", s.LastTick)
	return nil
}

// EvaluateTraffic runs the traffic router for the zone centered on tile.
func (s *Simulation) EvaluateTraffic(tile world.Point) (traffic.Result, error) {
	if !s.Map.Valid(tile) {
		return traffic.RouteNotFound, fmt.Errorf("tile %v out of bounds", tile)
	}
	cat, ok := world.CategoryOf(s.Map.Tile(tile))
	if !ok {
		return traffic.RouteNotFound, fmt.Errorf("tile %v is not a zone center", tile)
	}
	return s.evaluate(cat, tile), nil
}

func (s *Simulation) evaluate(cat world.ZoneCategory, tile world.Point) traffic.Result {
	res := s.Router.Evaluate(cat, tile)
	switch res {
	case traffic.RouteFound:
		s.Stats.Routes.Found++
	case traffic.RouteNotFound:
		s.Stats.Routes.NotFound++
	case traffic.NoTransportNearby:
		s.Stats.Routes.NoTransport++
	}
	return res
}

// sweepZones decays traffic, routes a trip from every zone center, refreshes
// pollution, and launches vehicles from the zones.
func (s *Simulation) sweepZones() {
	s.decayTraffic()

	var rails, commercial, industrial []world.Point
	residents := 0
	s.Map.Each(func(p world.Point, t world.Tile) {
		if world.IsRail(t.Masked()) {
			rails = append(rails, p)
		}
		cat, ok := world.CategoryOf(t)
		if !ok {
			return
		}
		s.evaluate(cat, p)
		switch cat {
		case world.Residential:
			residents += residentsPerZone
		case world.Commercial:
			commercial = append(commercial, p)
		case world.Industrial:
			industrial = append(industrial, p)
		}
	})
	s.Stats.Population = residents

	s.measurePollution()

	if len(rails) > 0 {
		s.Agents.GenerateTrain(rails[s.rand.Range(0, len(rails)-1)], residents)
	}
	if len(commercial) > 0 && s.rand.Range(0, 7) == 0 {
		s.Agents.GenerateHelicopter(commercial[s.rand.Range(0, len(commercial)-1)])
	}
	if len(industrial) > 0 && s.rand.Range(0, 11) == 0 {
		s.Agents.GenerateAirplane(industrial[s.rand.Range(0, len(industrial)-1)])
	}
}

// residentsPerZone is the population credited to each residential center.
const residentsPerZone = 8

// decayTraffic lets congestion fade between sweeps.
func (s *Simulation) decayTraffic() {
	w, h := s.Traffic.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := world.Pt(x, y)
			if v := s.Traffic.Get(c); v > 0 {
				s.Traffic.Set(c, v-v/4-1)
			}
		}
	}
}

// measurePollution rebuilds the pollution map from industrial and
// commercial zone centers and heavy traffic.
func (s *Simulation) measurePollution() {
	s.Pollution.Reset()
	s.Map.Each(func(p world.Point, t world.Tile) {
		cell := s.Pollution.Cell(p)
		if cat, ok := world.CategoryOf(t); ok {
			switch cat {
			case world.Industrial:
				s.Pollution.Add(cell, 120)
			case world.Commercial:
				s.Pollution.Add(cell, 30)
			}
		}
	})
	w, h := s.Traffic.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := world.Pt(x, y)
			if v := s.Traffic.Get(c); v > 0 {
				s.Pollution.Add(c, v/4)
			}
		}
	}
}

func (s *Simulation) updateStats() {
	active := make(map[string]int)
	for t, n := range s.Agents.CountActive() {
		active[t.String()] = n
	}
	zones := make(map[string]int)
	s.Map.Each(func(_ world.Point, t world.Tile) {
		if cat, ok := world.CategoryOf(t); ok {
			zones[cat.String()]++
		}
	})
	_, peak := s.Traffic.Peak()

	s.Stats.ActiveAgents = active
	s.Stats.Zones = zones
	s.Stats.TrafficPeak = peak
}

// Snapshot refreshes and returns the statistics.
func (s *Simulation) Snapshot() SimStats {
	s.updateStats()
	return s.Stats
}

func describe(kind notify.Kind, at world.Point) string {
	switch kind {
	case notify.PlaneCrashed:
		return fmt.Sprintf("A plane has crashed at %d,%d", at.X, at.Y)
	case notify.ShipWrecked:
		return fmt.Sprintf("A ship has wrecked at %d,%d", at.X, at.Y)
	case notify.TrainCrashed:
		return fmt.Sprintf("A train has crashed at %d,%d", at.X, at.Y)
	case notify.HelicopterCrashed:
		return fmt.Sprintf("A helicopter has crashed at %d,%d", at.X, at.Y)
	case notify.HeavyTrafficReported:
		return fmt.Sprintf("Heavy traffic reported near %d,%d", at.X, at.Y)
	case notify.ExplosionReported:
		return fmt.Sprintf("Explosion detected at %d,%d", at.X, at.Y)
	case notify.MonsterReported:
		return fmt.Sprintf("A monster has been sighted near %d,%d", at.X, at.Y)
	case notify.TornadoReported:
		return fmt.Sprintf("Tornado reported at %d,%d", at.X, at.Y)
	default:
		return fmt.Sprintf("%s at %d,%d", kind, at.X, at.Y)
	}
}
