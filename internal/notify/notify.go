// Package notify carries user-facing notifications and sound cues out of
// the simulation core.
package notify

import (
	"log/slog"
	"sync"

	"github.com/talgya/mini-city/internal/world"
)

// Kind identifies a notification.
type Kind string

const (
	PlaneCrashed         Kind = "plane_crashed"
	ShipWrecked          Kind = "ship_wrecked"
	TrainCrashed         Kind = "train_crashed"
	HelicopterCrashed    Kind = "helicopter_crashed"
	HeavyTrafficReported Kind = "heavy_traffic"
	ExplosionReported    Kind = "explosion"
	MonsterReported      Kind = "monster"
	TornadoReported      Kind = "tornado"
)

// Notification is one dispatched message, located in tile coordinates.
type Notification struct {
	Kind Kind        `json:"kind"`
	At   world.Point `json:"at"`
}

// Sink receives notifications.
type Sink interface {
	Dispatch(kind Kind, at world.Point)
}

// AudioSink receives sound cues. Category is a channel name such as "city".
type AudioSink interface {
	Play(category, cue string)
}

// Nop discards notifications and sound cues.
type Nop struct{}

func (Nop) Dispatch(Kind, world.Point) {}
func (Nop) Play(string, string)        {}

// Log writes notifications and cues to a slog logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l Log) Dispatch(kind Kind, at world.Point) {
	l.logger().Info("notification", "kind", kind, "x", at.X, "y", at.Y)
}

func (l Log) Play(category, cue string) {
	l.logger().Debug("sound", "category", category, "cue", cue)
}

// Sound is one recorded cue.
type Sound struct {
	Category string
	Cue      string
}

// Recorder keeps everything it receives. Used by tests and by the engine's
// per-tick collection.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
	sounds        []Sound
}

func (r *Recorder) Dispatch(kind Kind, at world.Point) {
	r.mu.Lock()
	r.notifications = append(r.notifications, Notification{Kind: kind, At: at})
	r.mu.Unlock()
}

func (r *Recorder) Play(category, cue string) {
	r.mu.Lock()
	r.sounds = append(r.sounds, Sound{Category: category, Cue: cue})
	r.mu.Unlock()
}

// Notifications returns a copy of the dispatched notifications.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Sounds returns a copy of the played cues.
func (r *Recorder) Sounds() []Sound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sound(nil), r.sounds...)
}

// Count returns how many notifications of kind were dispatched.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, note := range r.notifications {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.notifications = nil
	r.sounds = nil
	r.mu.Unlock()
}

// Fanout forwards each notification to every sink in order.
type Fanout []Sink

func (f Fanout) Dispatch(kind Kind, at world.Point) {
	for _, s := range f {
		s.Dispatch(kind, at)
	}
}
