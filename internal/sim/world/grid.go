package world

import "fmt"

type TileType uint8

const (
	TileClear TileType = iota
	TileWater
	TileVoid
	TileObject
)

// WaterClass is remembered while an object sits on a former water tile
// so clearing can put the water back.
type WaterClass uint8

const (
	WaterClassInvalid WaterClass = iota
	WaterClassSea
	WaterClassCanal
	WaterClassRiver
)

// Slope is a raised-corner mask (N/E/S/W) plus a steep bit. Flat is 0.
type Slope uint8

const (
	SlopeFlat  Slope = 0
	SlopeW     Slope = 1 << 0
	SlopeS     Slope = 1 << 1
	SlopeE     Slope = 1 << 2
	SlopeN     Slope = 1 << 3
	SlopeSteep Slope = 1 << 4
)

func (s Slope) IsFlat() bool  { return s == SlopeFlat }
func (s Slope) IsSteep() bool { return s&SlopeSteep != 0 }

// MaxZDelta is how far the highest corner sits above the tile's base
// height: 0 flat, 1 inclined, 2 steep.
func (s Slope) MaxZDelta() int {
	switch {
	case s.IsSteep():
		return 2
	case s == SlopeFlat:
		return 0
	default:
		return 1
	}
}

// Cell is the per-tile occupancy record. The object fields are only
// meaningful while Type == TileObject; DoClearSquare resets them.
type Cell struct {
	Type        TileType
	Height      uint8
	Slope       Slope
	Owner       Owner
	BridgeAbove bool

	Kind   uint8 // object kind tag (catalog palette index)
	Object ObjectID
	Aux    uint8 // animation stage; doubles as the HQ size level
	Water  WaterClass
}

type Grid struct {
	SizeX int
	SizeY int
	cells []Cell
}

func NewGrid(sizeX, sizeY int) *Grid {
	if sizeX < 4 || sizeY < 4 {
		panic(fmt.Sprintf("grid too small: %dx%d", sizeX, sizeY))
	}
	g := &Grid{SizeX: sizeX, SizeY: sizeY, cells: make([]Cell, sizeX*sizeY)}
	for i := range g.cells {
		g.cells[i].Owner = OwnerNone
	}
	return g
}

func (g *Grid) InBounds(p Pt) bool {
	return p.X >= 0 && p.X < g.SizeX && p.Y >= 0 && p.Y < g.SizeY
}

func (g *Grid) Index(p Pt) int { return p.Y*g.SizeX + p.X }

// Cell panics when p is off the map; callers are expected to have
// bounds-checked. Out-of-range access is a contract violation, not a
// recoverable failure.
func (g *Grid) Cell(p Pt) *Cell {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("tile out of bounds: %v", p))
	}
	return &g.cells[g.Index(p)]
}

func (g *Grid) TileType(p Pt) TileType {
	if !g.InBounds(p) {
		return TileVoid
	}
	return g.cells[g.Index(p)].Type
}

// MaxZ is the height of the tile's highest corner.
func (g *Grid) MaxZ(p Pt) int {
	c := g.Cell(p)
	return int(c.Height) + c.Slope.MaxZDelta()
}

// MakeObject stamps one occupancy cell. The water class records what
// terrain sat there before the object so a later clear can restore it.
func (g *Grid) MakeObject(p Pt, kind uint8, owner Owner, id ObjectID, wc WaterClass) {
	c := g.Cell(p)
	c.Type = TileObject
	c.Owner = owner
	c.Kind = kind
	c.Object = id
	c.Aux = 0
	c.Water = wc
}

// MakeWaterKeepingClass reverts an object cell to terrain, restoring
// water when the stored reclamation class says the cell used to be wet.
func (g *Grid) MakeWaterKeepingClass(p Pt, owner Owner) {
	c := g.Cell(p)
	wc := c.Water
	g.DoClearSquare(p)
	if wc != WaterClassInvalid {
		c.Type = TileWater
		c.Water = wc
		if wc == WaterClassSea {
			c.Owner = OwnerNone
		} else {
			c.Owner = owner
		}
	}
}

// DoClearSquare reverts a cell to bare clear land owned by nobody.
func (g *Grid) DoClearSquare(p Pt) {
	c := g.Cell(p)
	c.Type = TileClear
	c.Owner = OwnerNone
	c.Kind = 0
	c.Object = InvalidObject
	c.Aux = 0
	c.Water = WaterClassInvalid
}
