package world

import "testing"

func TestDensitySaturates(t *testing.T) {
	traffic := NewTrafficMap(11, 9)
	if w, h := traffic.Size(); w != 6 || h != 5 {
		t.Fatalf("Size = %dx%d, want 6x5", w, h)
	}

	c := traffic.Cell(Pt(5, 5))
	if c != Pt(2, 2) {
		t.Fatalf("Cell(5,5) = %v, want (2,2)", c)
	}
	traffic.Set(c, 300)
	if got := traffic.Get(c); got != 255 {
		t.Errorf("Set(300) stored %d, want 255", got)
	}
	if got := traffic.Add(c, -400); got != 0 {
		t.Errorf("Add(-400) = %d, want 0", got)
	}

	growth := NewGrowthMap(16, 16)
	growth.Set(Pt(0, 0), -300)
	if got := growth.Get(Pt(0, 0)); got != -200 {
		t.Errorf("growth floor = %d, want -200", got)
	}

	// Out of bounds reads zero and writes are ignored.
	traffic.Set(Pt(-1, 0), 10)
	if got := traffic.Get(Pt(99, 99)); got != 0 {
		t.Errorf("out of bounds Get = %d", got)
	}
}

func TestDensityPeakTile(t *testing.T) {
	d := NewTrafficMap(20, 20)
	d.Set(Pt(3, 1), 100)
	d.Set(Pt(5, 5), 40)

	cell, v := d.Peak()
	if cell != Pt(3, 1) || v != 100 {
		t.Fatalf("Peak = %v %d", cell, v)
	}
	if got := d.PeakTile(); got != Pt(6, 2) {
		t.Fatalf("PeakTile = %v, want (6,2)", got)
	}

	d.Reset()
	if _, v := d.Peak(); v != 0 {
		t.Fatalf("after Reset peak = %d", v)
	}
}

func TestTileClassification(t *testing.T) {
	tests := []struct {
		name string
		tile Tile
		road bool
		rail bool
		wet  bool
	}{
		{"road", ROADS | BLBNBIT, true, false, false},
		{"intersection", INTERSECTION, true, false, false},
		{"power line", HPOWER, false, false, true},
		{"rail on land", LHRAIL | BLBNBIT, true, true, false},
		{"rail bridge", HRAIL, true, true, true},
		{"rail crossing power", RAILHPOWERV, true, true, false},
		{"open drawbridge", BRWH, true, false, true},
		{"dirt", DIRT, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.tile.Masked()
			if got := IsRoadOrRail(tt.tile); got != tt.road {
				t.Errorf("IsRoadOrRail = %v, want %v", got, tt.road)
			}
			if got := IsRail(m); got != tt.rail {
				t.Errorf("IsRail = %v, want %v", got, tt.rail)
			}
			if got := IsWet(m); got != tt.wet {
				t.Errorf("IsWet = %v, want %v", got, tt.wet)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		tile Tile
		cat  ZoneCategory
		ok   bool
	}{
		{FREEZ | ZONEBIT, Residential, true},
		{FREEZ, 0, false},
		{COMCLR | ZONEBIT | BULLBIT, Commercial, true},
		{INDCLR | ZONEBIT, Industrial, true},
		{PORT | ZONEBIT, 0, false},
		{HOSPITAL | ZONEBIT, 0, false},
	}
	for _, tt := range tests {
		cat, ok := CategoryOf(tt.tile)
		if ok != tt.ok || (ok && cat != tt.cat) {
			t.Errorf("CategoryOf(%#x) = %v, %v; want %v, %v", uint16(tt.tile), cat, ok, tt.cat, tt.ok)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a, b := Generate(cfg), Generate(cfg)

	same := true
	a.Each(func(p Point, t Tile) {
		if b.Tile(p) != t {
			same = false
		}
	})
	if !same {
		t.Fatal("same seed produced different maps")
	}

	channel := false
	w, _ := a.Size()
	for x := 0; x < w; x++ {
		if a.Tile(Pt(x, 0)).Masked() == CHANNEL {
			channel = true
		}
	}
	if !channel {
		t.Error("no channel on the top edge")
	}

	// Open water never touches land directly; shores become river edges.
	a.Each(func(p Point, tile Tile) {
		if tile != RIVER {
			return
		}
		for _, d := range [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
			n := p.Add(d)
			if a.Valid(n) && !IsWater(a.Tile(n).Masked()) {
				t.Fatalf("river at %v touches land at %v", p, n)
			}
		}
	})
}

func TestPlaceZones(t *testing.T) {
	m := NewMap(48, 36)
	seeds := PlaceZones(m, 1)
	if len(seeds) == 0 {
		t.Fatal("no zones placed")
	}
	for i, s := range seeds {
		cat, ok := CategoryOf(m.Tile(s.Center))
		if !ok || cat != s.Category {
			t.Errorf("zone %d at %v: CategoryOf = %v, %v; want %v", i, s.Center, cat, ok, s.Category)
		}
		if s.Name == "" {
			t.Errorf("zone %d has no name", i)
		}
		if i > 0 && s.Score > seeds[i-1].Score {
			t.Errorf("zones not sorted by score at %d", i)
		}
	}

	rails := 0
	m.Each(func(_ Point, t Tile) {
		if IsRail(t.Masked()) {
			rails++
		}
	})
	if rails == 0 {
		t.Error("no rail laid")
	}

	again := NewMap(48, 36)
	if len(PlaceZones(again, 1)) != len(seeds) {
		t.Error("placement not deterministic")
	}
}
