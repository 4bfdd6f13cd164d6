// Package agents provides the mobile agents of the city: trains, ships,
// aircraft, monsters, tornadoes, and explosions. Agents live in a Registry
// and are advanced once per tick by a per-type state machine.
package agents

import (
	"errors"
	"fmt"

	"github.com/talgya/mini-city/internal/world"
)

// ErrUnknownType is returned when a type name does not match any agent type.
var ErrUnknownType = errors.New("unknown agent type")

// AgentID is a unique identifier for an agent slot.
type AgentID uint64

// Type discriminates the seven agent kinds.
type Type uint8

const (
	Train Type = iota + 1
	Helicopter
	Airplane
	Ship
	Monster
	Tornado
	Explosion
)

// Types lists every agent type in declaration order.
var Types = []Type{Train, Helicopter, Airplane, Ship, Monster, Tornado, Explosion}

var typeNames = map[Type]string{
	Train:      "train",
	Helicopter: "helicopter",
	Airplane:   "airplane",
	Ship:       "ship",
	Monster:    "monster",
	Tornado:    "tornado",
	Explosion:  "explosion",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Valid reports whether t is one of the seven agent types.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Singleton reports whether at most one agent of this type may be active.
func (t Type) Singleton() bool { return t != Explosion }

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseType maps a name such as "tornado" to its Type.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// TypeNames returns the frame-asset names of every type.
func TypeNames() []string {
	names := make([]string, 0, len(Types))
	for _, t := range Types {
		names = append(names, t.String())
	}
	return names
}

// Agent is one mobile sprite. Positions are in pixels; Hot is the offset
// from Position to the point the agent interacts with the map through.
type Agent struct {
	ID   AgentID `json:"id"`
	Type Type    `json:"type"`

	Position    world.Point `json:"position"`
	Origin      world.Point `json:"origin"`
	Destination world.Point `json:"destination"`
	Size        world.Point `json:"size"`
	Hot         world.Point `json:"hot"`

	Frame  int  `json:"frame"`
	Frames int  `json:"frames"` // Animation length, from the frame provider
	Speed  int  `json:"speed"`
	Active bool `json:"active"`

	State State `json:"state"`

	// Set when spawned during an update pass; the agent waits for the
	// next pass before its first update.
	fresh bool
}

// HotSpot returns the pixel the agent touches the map at.
func (a *Agent) HotSpot() world.Point { return a.Position.Add(a.Hot) }

// State is the per-type payload of an agent. The set of implementations is
// closed: exactly one struct per Type.
type State interface {
	agentState()
}

// TrainState tracks the current heading. Dir indexes north, east, south,
// west; trainIdle means no track was found on the last tick.
type TrainState struct {
	Dir int `json:"dir"`
}

// ShipState tracks the eight-way heading. Dir is the reverse of the last
// chosen heading, NewDir the heading being turned toward, and Count ticks
// until the next re-heading scan.
type ShipState struct {
	Dir        int `json:"dir"`
	NewDir     int `json:"new_dir"`
	Count      int `json:"count"`
	SoundCount int `json:"sound_count"`
}

// HelicopterState holds the fuel counter and the traffic-report cooldown.
type HelicopterState struct {
	Count      int `json:"count"`
	SoundCount int `json:"sound_count"`
}

// AirplaneState has no counters; the frame doubles as the heading.
type AirplaneState struct{}

// MonsterState tracks lifespan, roar cooldown, the approach-phase turning
// step, and whether the monster is heading back to its origin.
type MonsterState struct {
	Count      int  `json:"count"`
	SoundCount int  `json:"sound_count"`
	Step       int  `json:"step"`
	Returning  bool `json:"returning"`
}

// TornadoState holds the remaining lifespan.
type TornadoState struct {
	Count int `json:"count"`
}

// ExplosionState has no counters; the frame drives the animation.
type ExplosionState struct{}

func (*TrainState) agentState()      {}
func (*ShipState) agentState()       {}
func (*HelicopterState) agentState() {}
func (*AirplaneState) agentState()   {}
func (*MonsterState) agentState()    {}
func (*TornadoState) agentState()    {}
func (*ExplosionState) agentState()  {}
