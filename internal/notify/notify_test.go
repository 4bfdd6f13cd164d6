package notify

import (
	"testing"

	"github.com/talgya/mini-city/internal/world"
)

func TestFanoutDeliversToAll(t *testing.T) {
	var a, b Recorder
	f := Fanout{&a, Nop{}, &b}

	f.Dispatch(TornadoReported, world.Pt(3, 4))
	f.Dispatch(MonsterReported, world.Pt(5, 6))

	for name, r := range map[string]*Recorder{"a": &a, "b": &b} {
		got := r.Notifications()
		if len(got) != 2 {
			t.Fatalf("%s: got %d notifications want 2", name, len(got))
		}
		if got[0].Kind != TornadoReported || got[0].At != world.Pt(3, 4) {
			t.Fatalf("%s: first notification: got %+v", name, got[0])
		}
	}
}

func TestRecorderCountAndReset(t *testing.T) {
	var r Recorder
	r.Dispatch(ExplosionReported, world.Pt(1, 1))
	r.Dispatch(ExplosionReported, world.Pt(2, 2))
	r.Dispatch(ShipWrecked, world.Pt(0, 0))
	r.Play("city", "Explosion-High")

	if got := r.Count(ExplosionReported); got != 2 {
		t.Fatalf("explosions: got %d want 2", got)
	}
	if got := len(r.Sounds()); got != 1 {
		t.Fatalf("sounds: got %d want 1", got)
	}

	r.Reset()
	if len(r.Notifications()) != 0 || len(r.Sounds()) != 0 {
		t.Fatal("Reset left entries behind")
	}
}
