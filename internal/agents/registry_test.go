package agents

import (
	"errors"
	"testing"

	"github.com/talgya/mini-city/internal/assets"
	"github.com/talgya/mini-city/internal/entropy"
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

type fixture struct {
	grid    *world.Map
	traffic *world.DensityMap
	growth  *world.DensityMap
	notes   *notify.Recorder
	reg     *Registry
}

func newFixture(w, h int, rand entropy.Source, opts Options) *fixture {
	f := &fixture{
		grid:    world.NewMap(w, h),
		traffic: world.NewTrafficMap(w, h),
		growth:  world.NewGrowthMap(w, h),
		notes:   &notify.Recorder{},
	}
	f.reg = NewRegistry(Env{
		Grid:      f.grid,
		Traffic:   f.traffic,
		Growth:    f.growth,
		Pollution: world.NewTrafficMap(w, h),
		Rand:      rand,
		Notify:    f.notes,
		Audio:     f.notes,
		Options:   opts,
	})
	return f
}

func TestSpawnSingletonReusesSlot(t *testing.T) {
	for _, typ := range Types {
		if !typ.Singleton() {
			continue
		}
		t.Run(typ.String(), func(t *testing.T) {
			f := newFixture(20, 20, entropy.Constant(0), Options{})
			first := f.reg.Spawn(typ, world.Pt(64, 64))
			f.reg.Deactivate(first)
			f.reg.Spawn(typ, world.Pt(96, 96))
			second := f.reg.Spawn(typ, world.Pt(128, 128))

			if second != first {
				t.Fatalf("spawn allocated a new slot for singleton %v", typ)
			}
			if f.reg.Len() != 1 {
				t.Fatalf("slots: got %d want 1", f.reg.Len())
			}
			if got := f.reg.CountActive()[typ]; got != 1 {
				t.Fatalf("active %v: got %d want 1", typ, got)
			}
			if second.Position != world.Pt(128, 128) {
				t.Fatalf("position: got %v want (128,128)", second.Position)
			}
		})
	}
}

func TestSpawnExplosionReusesInactiveSlot(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	a := f.reg.Spawn(Explosion, world.Pt(10, 10))
	b := f.reg.Spawn(Explosion, world.Pt(20, 20))
	if a == b || f.reg.Len() != 2 {
		t.Fatalf("two live explosions should occupy two slots, got %d", f.reg.Len())
	}

	f.reg.Deactivate(a)
	c := f.reg.Spawn(Explosion, world.Pt(30, 30))
	if c != a {
		t.Fatal("explosion did not reuse the inactive slot")
	}
	if f.reg.Len() != 2 {
		t.Fatalf("slots: got %d want 2", f.reg.Len())
	}
}

func TestSpawnResetsTypeDefaults(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	heli := f.reg.Spawn(Helicopter, world.Pt(100, 100))
	heli.Frame = 2
	heli.State.(*HelicopterState).Count = 3

	heli = f.reg.Spawn(Helicopter, world.Pt(100, 100))
	if heli.Frame != 5 {
		t.Fatalf("frame: got %d want 5", heli.Frame)
	}
	if got := heli.State.(*HelicopterState).Count; got != 1500 {
		t.Fatalf("count: got %d want 1500", got)
	}
	if heli.Origin != world.Pt(70, 100) {
		t.Fatalf("origin: got %v want (70,100)", heli.Origin)
	}
}

func spawnPanic(t *testing.T, reg *Registry, typ Type) error {
	t.Helper()
	var got any
	func() {
		defer func() { got = recover() }()
		reg.Spawn(typ, world.Pt(0, 0))
	}()
	if got == nil {
		t.Fatalf("spawn of %v did not panic", typ)
	}
	err, ok := got.(error)
	if !ok {
		t.Fatalf("panic value %T is not an error", got)
	}
	return err
}

func TestSpawnUnknownTypePanics(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	if err := spawnPanic(t, f.reg, Type(42)); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("panic: got %v want ErrUnknownType", err)
	}
}

func TestSpawnWithoutFramesPanics(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	f.reg.env.Frames = assets.Table{"train": 5}
	if err := spawnPanic(t, f.reg, Ship); !errors.Is(err, assets.ErrUnknownType) {
		t.Fatalf("panic: got %v want assets.ErrUnknownType", err)
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, err := ParseType(typ.String())
		if err != nil || got != typ {
			t.Fatalf("ParseType(%q): got %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseType("zeppelin"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestActiveIsRestartable(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	f.reg.Spawn(Train, world.Pt(0, 0))
	heli := f.reg.Spawn(Helicopter, world.Pt(50, 50))
	f.reg.Spawn(Tornado, world.Pt(80, 80))
	f.reg.Deactivate(heli)

	collect := func() []Type {
		var out []Type
		for a := range f.reg.Active() {
			out = append(out, a.Type)
		}
		return out
	}

	first, second := collect(), collect()
	want := []Type{Train, Tornado}
	for _, got := range [][]Type{first, second} {
		if len(got) != len(want) {
			t.Fatalf("active: got %v want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("active: got %v want %v", got, want)
			}
		}
	}
}

func TestCollidedIsSymmetric(t *testing.T) {
	cases := []struct {
		name   string
		a, b   world.Point
		active bool
		want   bool
	}{
		{"same spot", world.Pt(10, 10), world.Pt(10, 10), true, true},
		{"exactly 30px", world.Pt(0, 0), world.Pt(18, 24), true, true},
		{"just out of reach", world.Pt(0, 0), world.Pt(31, 0), true, false},
		{"diagonal far", world.Pt(-40, 5), world.Pt(40, 90), true, false},
		{"inactive", world.Pt(0, 0), world.Pt(1, 1), false, false},
	}
	for _, tc := range cases {
		a := &Agent{Position: tc.a, Active: true}
		b := &Agent{Position: tc.b, Active: tc.active}
		if got := Collided(a, b); got != tc.want {
			t.Fatalf("%s: Collided(a, b) got %v want %v", tc.name, got, tc.want)
		}
		if Collided(a, b) != Collided(b, a) {
			t.Fatalf("%s: collision is not symmetric", tc.name)
		}
	}
}

func TestTrafficHotspotDivertsActiveHelicopter(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	heli := f.reg.Spawn(Helicopter, world.Pt(100, 100))

	f.reg.TrafficHotspot(world.Pt(64, 256))
	if heli.Destination != world.Pt(64, 256) {
		t.Fatalf("destination: got %v want (64,256)", heli.Destination)
	}

	f.reg.Deactivate(heli)
	f.reg.TrafficHotspot(world.Pt(1, 1))
	if heli.Destination != world.Pt(64, 256) {
		t.Fatal("grounded helicopter was diverted")
	}
}

func TestGenerateShipFindsChannel(t *testing.T) {
	f := newFixture(32, 24, entropy.NewScript(0), Options{})
	f.grid.SetTile(world.Pt(5, 0), world.CHANNEL)

	ship, ok := f.reg.GenerateShip()
	if !ok {
		t.Fatal("no ship launched")
	}
	if !ship.Active || ship.Type != Ship {
		t.Fatalf("got %+v, want an active ship", ship)
	}
	if got := ship.HotSpot().ToTile(); got != world.Pt(5, 0) {
		t.Fatalf("ship anchored at %v want (5,0)", got)
	}
}

func TestGenerateShipOtherEdgeFindsNothing(t *testing.T) {
	f := newFixture(32, 24, entropy.NewScript(1), Options{})
	f.grid.SetTile(world.Pt(5, 0), world.CHANNEL)

	if _, ok := f.reg.GenerateShip(); ok {
		t.Fatal("ship launched from an edge without a channel")
	}
	if f.reg.Len() != 0 {
		t.Fatalf("slots: got %d want 0", f.reg.Len())
	}
}

func TestGenerateMonsterFallsBackToCenter(t *testing.T) {
	f := newFixture(40, 30, entropy.Constant(0), Options{})
	m := f.reg.GenerateMonster()

	want := world.Pt(20, 15).ToPixel().Add(world.Pt(48, 0))
	if m.Position != want {
		t.Fatalf("position: got %v want %v", m.Position, want)
	}
	if f.notes.Count(notify.MonsterReported) != 1 {
		t.Fatal("monster was not reported")
	}
}

func TestGenerateMonsterRisesFromRiver(t *testing.T) {
	f := newFixture(40, 30, entropy.Constant(0), Options{})
	// Constant(0) looks at tile (10, 5) on every try.
	f.grid.SetTile(world.Pt(10, 5), world.RIVER|world.BULLBIT)

	m := f.reg.GenerateMonster()
	if got := m.Position; got != world.Pt(160+48, 80) {
		t.Fatalf("position: got %v want (208,80)", got)
	}
	if got := f.notes.Notifications()[0].At; got != world.Pt(15, 5) {
		t.Fatalf("report at %v want (15,5)", got)
	}
}

func TestGenerateHelicopterSkipsWhileFlying(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	f.reg.GenerateHelicopter(world.Pt(2, 2))
	heli, _ := f.reg.Lookup(Helicopter)
	heli.Position = world.Pt(1, 1)

	f.reg.GenerateHelicopter(world.Pt(9, 9))
	if heli.Position != world.Pt(1, 1) {
		t.Fatal("flying helicopter was respawned")
	}
}

func TestGenerateTrain(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	rail := world.Pt(5, 5)

	f.reg.GenerateTrain(rail, 20)
	if f.reg.Len() != 0 {
		t.Fatal("train started in a city of 20")
	}

	f.reg.GenerateTrain(rail, 21)
	train, ok := f.reg.lookupActive(Train)
	if !ok {
		t.Fatal("no train started")
	}
	if want := rail.ToPixel().Add(world.Pt(-39, 6)); train.Position != want {
		t.Fatalf("position: got %v want %v", train.Position, want)
	}

	// A crashed train is replaced by the next generation pass.
	f.reg.Deactivate(train)
	f.reg.GenerateTrain(rail, 21)
	if !train.Active || f.reg.Len() != 1 {
		t.Fatalf("crashed train not restarted in place: active=%v slots=%d", train.Active, f.reg.Len())
	}
}

func TestGenerateTrainOdds(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(7), Options{})
	f.reg.GenerateTrain(world.Pt(5, 5), 100)
	if f.reg.Len() != 0 {
		t.Fatal("train started although the 1-in-26 roll failed")
	}
}

func TestGenerateShipWaitsForActiveShip(t *testing.T) {
	f := newFixture(20, 20, entropy.Constant(0), Options{})
	f.grid.SetTile(world.Pt(5, 0), world.CHANNEL)

	ship, ok := f.reg.GenerateShip()
	if !ok {
		t.Fatal("no ship launched")
	}
	ship.Position = world.Pt(100, 100)
	if _, ok := f.reg.GenerateShip(); ok {
		t.Fatal("second ship launched while one is sailing")
	}
	if ship.Position != world.Pt(100, 100) {
		t.Fatal("sailing ship was reset")
	}

	f.reg.Explode(ship)
	again, ok := f.reg.GenerateShip()
	if !ok || again != ship || !ship.Active {
		t.Fatalf("wrecked ship not replaced: ok=%v active=%v", ok, ship.Active)
	}
}
