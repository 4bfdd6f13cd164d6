// Package engine provides the tick-based simulation loop and the world-state
// aggregate it drives.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TickSchedule defines when the slower layers run relative to the tick
// counter.
const (
	TicksPerSimHour = 60   // 60 ticks = 1 sim-hour
	TicksPerSimDay  = 1440 // 24 hours × 60
)

// Engine drives the simulation forward. All callbacks run with the engine
// lock held, so anything that takes the lock through Do sees a consistent
// state between ticks.
type Engine struct {
	mu sync.Mutex

	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	running  bool
	done     chan struct{}

	// Callbacks for each tick layer, populated during setup.
	OnTick func(tick uint64) // Every tick
	OnHour func(tick uint64) // Every 60 ticks
	OnDay  func(tick uint64) // Every 1440 ticks
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 100 * time.Millisecond,
	}
}

// Run starts the simulation loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.done = make(chan struct{})
	done := e.done
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)
	e.mu.Unlock()

	for {
		e.mu.Lock()
		if !e.running {
			e.mu.Unlock()
			break
		}
		speed := e.Speed
		if speed <= 0 {
			e.mu.Unlock()
			// Paused: sleep briefly and check again.
			if sleepOrDone(100*time.Millisecond, done) {
				break
			}
			continue
		}

		start := time.Now()
		e.step()
		target := time.Duration(float64(e.Interval) / speed)
		e.mu.Unlock()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		if elapsed := time.Since(start); elapsed < target {
			if sleepOrDone(target-elapsed, done) {
				break
			}
		}
	}

	e.mu.Lock()
	slog.Info("simulation engine stopped", "tick", e.Tick)
	e.mu.Unlock()
}

func sleepOrDone(d time.Duration, done <-chan struct{}) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return false
	case <-done:
		return true
	}
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	close(e.done)
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Do runs fn between ticks with the engine lock held.
func (e *Engine) Do(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// SetSpeed changes the speed multiplier; 0 pauses the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.Speed = speed
	e.mu.Unlock()
}

// CurrentTick returns the tick counter.
func (e *Engine) CurrentTick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tick
}

// StepOnce advances one tick immediately, whatever the speed.
func (e *Engine) StepOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step()
}

// step advances the simulation by one tick. Caller holds the lock.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.Tick%TicksPerSimHour == 0 && e.OnHour != nil {
		e.OnHour(e.Tick)
	}
	if e.Tick%TicksPerSimDay == 0 && e.OnDay != nil {
		e.OnDay(e.Tick)
	}
}

// SimTime returns a human-readable simulation time string from a tick number.
func SimTime(tick uint64) string {
	minutes := tick % 60
	totalHours := tick / 60
	hours := totalHours % 24
	days := totalHours/24 + 1
	return fmt.Sprintf("Day %d, %d:%02d", days, hours, minutes)
}
