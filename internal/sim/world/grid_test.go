package world

import (
	"testing"
)

func TestGrid_Bounds(t *testing.T) {
	g := NewGrid(8, 8)
	if g.TileType(Pt{-1, 0}) != TileVoid || g.TileType(Pt{8, 8}) != TileVoid {
		t.Fatalf("out-of-map tiles must read as void")
	}
	if g.TileType(Pt{0, 0}) != TileClear {
		t.Fatalf("fresh tile is not clear")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("Cell on an out-of-map tile must panic")
		}
	}()
	g.Cell(Pt{9, 0})
}

func TestGrid_MaxZ(t *testing.T) {
	g := NewGrid(8, 8)
	c := g.Cell(Pt{2, 2})
	c.Height = 3
	if g.MaxZ(Pt{2, 2}) != 3 {
		t.Fatalf("flat MaxZ wrong")
	}
	c.Slope = SlopeN
	if g.MaxZ(Pt{2, 2}) != 4 {
		t.Fatalf("inclined MaxZ wrong")
	}
	c.Slope = SlopeN | SlopeSteep
	if g.MaxZ(Pt{2, 2}) != 5 {
		t.Fatalf("steep MaxZ wrong")
	}
}

func TestGrid_WaterClassRoundTrip(t *testing.T) {
	g := NewGrid(8, 8)

	// Object stamped over sea: clearing restores ownerless sea.
	sea := g.Cell(Pt{1, 1})
	sea.Type = TileWater
	sea.Water = WaterClassSea
	g.MakeObject(Pt{1, 1}, 3, Owner(2), ObjectID(7), WaterClassSea)
	if g.TileType(Pt{1, 1}) != TileObject {
		t.Fatalf("stamp failed")
	}
	g.MakeWaterKeepingClass(Pt{1, 1}, Owner(2))
	c := g.Cell(Pt{1, 1})
	if c.Type != TileWater || c.Water != WaterClassSea {
		t.Fatalf("sea not restored: %+v", c)
	}
	if c.Owner != OwnerNone {
		t.Fatalf("restored sea has owner %d", c.Owner)
	}

	// Canal water keeps its owner.
	canal := g.Cell(Pt{2, 2})
	canal.Type = TileWater
	canal.Water = WaterClassCanal
	g.MakeObject(Pt{2, 2}, 3, Owner(2), ObjectID(8), WaterClassCanal)
	g.MakeWaterKeepingClass(Pt{2, 2}, Owner(2))
	c = g.Cell(Pt{2, 2})
	if c.Type != TileWater || c.Water != WaterClassCanal || c.Owner != Owner(2) {
		t.Fatalf("canal not restored: %+v", c)
	}

	// A dry-land object reverts to bare clear land.
	g.MakeObject(Pt{3, 3}, 3, Owner(2), ObjectID(9), WaterClassInvalid)
	g.MakeWaterKeepingClass(Pt{3, 3}, Owner(2))
	c = g.Cell(Pt{3, 3})
	if c.Type != TileClear || c.Owner != OwnerNone || c.Object != InvalidObject {
		t.Fatalf("land not restored: %+v", c)
	}
}

func TestObjectPool_HandlesAndCounts(t *testing.T) {
	p := NewObjectPool()

	id1, err := p.Allocate()
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	id2, _ := p.Allocate()
	if id1 == id2 || id1 == InvalidObject {
		t.Fatalf("bad handles %d %d", id1, id2)
	}
	p.IncCount("A")
	p.IncCount("A")
	if p.Count("A") != 2 || p.Live() != 2 {
		t.Fatalf("counts wrong: %d live %d", p.Count("A"), p.Live())
	}

	p.DecCount("A")
	p.Destroy(id1)
	if p.Live() != 1 {
		t.Fatalf("live = %d after destroy", p.Live())
	}

	// Freed slots get reused.
	id3, _ := p.Allocate()
	if id3 != id1 {
		t.Fatalf("free slot not reused: got %d, want %d", id3, id1)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("Get on a destroyed handle must panic")
		}
	}()
	p.Destroy(id3)
	p.Get(id3)
}

func TestObjectPool_CanAllocateMaxCount(t *testing.T) {
	p := NewObjectPool()
	if !p.CanAllocate("A", 0) {
		t.Fatalf("unlimited kind rejected")
	}
	p.IncCount("A")
	if p.CanAllocate("A", 1) {
		t.Fatalf("kind over its max accepted")
	}
	if !p.CanAllocate("B", 1) {
		t.Fatalf("other kind affected by A's count")
	}
}

func TestRandomizer_Deterministic(t *testing.T) {
	a := NewRandomizer(99)
	b := NewRandomizer(99)
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("same seed diverged at draw %d", i)
		}
	}
	c := NewRandomizer(100)
	same := true
	a = NewRandomizer(99)
	for i := 0; i < 10; i++ {
		if a.Next() != c.Next() {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds produced identical streams")
	}

	r := NewRandomizer(7)
	for i := 0; i < 1000; i++ {
		if v := r.NextMax(13); v < 0 || v >= 13 {
			t.Fatalf("NextMax out of range: %d", v)
		}
	}
}

func TestGenerateTerrain_DeterministicAndBounded(t *testing.T) {
	a := NewGrid(32, 32)
	b := NewGrid(32, 32)
	GenerateTerrain(a, 5, false)
	GenerateTerrain(b, 5, false)

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			p := Pt{x, y}
			ca, cb := a.Cell(p), b.Cell(p)
			if *ca != *cb {
				t.Fatalf("terrain diverged at %v", p)
			}
			if ca.Height > maxHeight {
				t.Fatalf("height %d over cap at %v", ca.Height, p)
			}
			if ca.Type == TileWater && ca.Water != WaterClassSea {
				t.Fatalf("generated water without a sea class at %v", p)
			}
		}
	}
}

func TestGenerateTerrain_HardEdges(t *testing.T) {
	g := NewGrid(32, 32)
	GenerateTerrain(g, 5, true)
	for i := 0; i < 32; i++ {
		for _, p := range []Pt{{i, 0}, {i, 31}, {0, i}, {31, i}} {
			if g.TileType(p) != TileVoid {
				t.Fatalf("hard edge not void at %v", p)
			}
		}
	}
}
