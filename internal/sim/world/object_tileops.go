package world

import (
	"fmt"

	"tilemark.dev/internal/sim/catalogs"
)

// The tile operation set: the per-cell behaviors this subsystem exposes
// to the generic grid-actor dispatch. Kind-specific behavior lives in a
// lookup table keyed by kind id; kinds without an entry get defaults.

type Foundation uint8

const (
	FoundationNone Foundation = iota
	FoundationLeveled
)

type TileDesc struct {
	Kind      string
	Name      string
	Owner     Owner
	BuildDate Date
}

type CargoAcceptance struct {
	Amounts        map[string]int
	AlwaysAccepted map[string]bool
}

func NewCargoAcceptance() *CargoAcceptance {
	return &CargoAcceptance{Amounts: map[string]int{}, AlwaysAccepted: map[string]bool{}}
}

func (a *CargoAcceptance) Add(cargo string, amount int) { a.Amounts[cargo] += amount }

// kindOps overrides default tile behavior per object kind. Nil fields
// fall back to the defaults in the World methods below.
type kindOps struct {
	height      func(w *World, p Pt) int
	acceptCargo func(w *World, p Pt, acc *CargoAcceptance)
	tileLoop    func(w *World, p Pt)
	click       func(w *World, p Pt) (Owner, bool)
	changeOwner func(w *World, p Pt, oldOwner, newOwner Owner)
	terraform   func(w *World, p Pt, zNew int, slopeNew Slope, ctx CmdContext) (Money, error)
}

var kindOpsTable = map[string]*kindOps{
	KindTransmitter: {
		terraform: terraformFixedElevation,
	},
	KindLighthouse: {
		terraform: terraformFixedElevation,
	},
	KindStatue: {
		changeOwner: changeOwnerStatue,
	},
	KindOwnedLand: {
		height:      heightOwnedLand,
		changeOwner: changeOwnerOwnedLand,
		terraform:   terraformOwnedLand,
	},
	KindHQ: {
		acceptCargo: (*World).hqAcceptedCargo,
		tileLoop:    (*World).hqTileLoop,
		click:       clickHQ,
	},
}

// validateKindOps checks the dispatch table against the loaded catalog
// at startup, the same way the action dispatch maps are validated.
func validateKindOps(cats *catalogs.Catalogs) error {
	for kind := range kindOpsTable {
		if _, ok := cats.Objects.Defs[kind]; !ok {
			return fmt.Errorf("kindOpsTable has unknown kind %q", kind)
		}
	}
	return nil
}

func (w *World) opsFor(p Pt) *kindOps {
	ops := kindOpsTable[w.objectKindAt(p)]
	if ops == nil {
		ops = &kindOps{}
	}
	return ops
}

// HeightAt reports the tile-centre height of an object cell. Default:
// the flat maximum height of the footprint.
func (w *World) HeightAt(p Pt) int {
	if f := w.opsFor(p).height; f != nil {
		return f(w, p)
	}
	return w.grid.MaxZ(p)
}

// FoundationAt reports whether the cell draws a flattening foundation
// under its structure. Kinds flagged NO_FOUNDATION sit directly on the
// terrain; everything else levels any underlying slope.
func (w *World) FoundationAt(p Pt) Foundation {
	if w.catalogs.Objects.Defs[w.objectKindAt(p)].HasFlag(catalogs.FlagNoFoundation) {
		return FoundationNone
	}
	if w.grid.Cell(p).Slope.IsFlat() {
		return FoundationNone
	}
	return FoundationLeveled
}

// AcceptedCargo accumulates the cell's cargo acceptance. Default: none.
func (w *World) AcceptedCargo(p Pt, acc *CargoAcceptance) {
	if f := w.opsFor(p).acceptCargo; f != nil {
		f(w, p, acc)
	}
}

// Describe reports the kind's display name, the tile's owner, and the
// object's build date.
func (w *World) Describe(p Pt) TileDesc {
	kind := w.objectKindAt(p)
	return TileDesc{
		Kind:      kind,
		Name:      w.catalogs.Objects.Defs[kind].Name,
		Owner:     w.grid.Cell(p).Owner,
		BuildDate: w.ObjectAt(p).BuildDate,
	}
}

// TileLoop runs one per-step simulation slice for an object cell:
// water-adjacent cells delegate to the water simulation first, then the
// kind's own behavior runs (only the head office has any).
func (w *World) TileLoop(p Pt) {
	if w.grid.Cell(p).Water != WaterClassInvalid && w.waterSim != nil {
		w.waterSim.TileLoop(p)
	}
	if f := w.opsFor(p).tileLoop; f != nil {
		f(w, p)
	}
}

// ClickTile reports which company's detail view a click should open.
// Default: non-interactive.
func (w *World) ClickTile(p Pt) (Owner, bool) {
	if f := w.opsFor(p).click; f != nil {
		return f(w, p)
	}
	return OwnerInvalid, false
}

// ChangeTileOwner reacts to an ownership set changing: the old owner's
// object cells transfer to the successor or revert to terrain. Default:
// revert.
func (w *World) ChangeTileOwner(p Pt, oldOwner, newOwner Owner) {
	if w.grid.TileType(p) != TileObject || w.grid.Cell(p).Owner != oldOwner {
		return
	}
	if f := w.opsFor(p).changeOwner; f != nil {
		f(w, p, oldOwner, newOwner)
		return
	}
	w.destroyObjectToTerrain(w.ObjectAt(p))
}

// TerraformTile decides how the cell reacts to a height/slope change.
// Default: the cell must be cleared first via the generic land-clearing
// path.
func (w *World) TerraformTile(p Pt, zNew int, slopeNew Slope, ctx CmdContext) (Money, error) {
	if f := w.opsFor(p).terraform; f != nil {
		return f(w, p, zNew, slopeNew, ctx)
	}
	return w.terraformAutoslope(p, zNew, slopeNew, ctx)
}

// destroyObjectToTerrain removes a whole object outside the command
// path (ownership transfer cleanup). Counts stay balanced and every
// cell reverts to terrain.
func (w *World) destroyObjectToTerrain(o *Object) {
	w.objects.DecCount(o.Kind)
	o.Location.Each(func(p Pt) bool {
		w.grid.MakeWaterKeepingClass(p, w.grid.Cell(p).Owner)
		return true
	})
	w.objects.Destroy(o.ID)
}

// --- kind-specific behaviors ---

func heightOwnedLand(w *World, p Pt) int {
	// Owned land shows bare terrain, so height follows the slope.
	c := w.grid.Cell(p)
	return int(c.Height) + c.Slope.MaxZDelta()/2
}

func clickHQ(w *World, p Pt) (Owner, bool) {
	return w.grid.Cell(p).Owner, true
}

func changeOwnerOwnedLand(w *World, p Pt, oldOwner, newOwner Owner) {
	if newOwner != OwnerInvalid {
		w.grid.Cell(p).Owner = newOwner
		return
	}
	w.destroyObjectToTerrain(w.ObjectAt(p))
}

func changeOwnerStatue(w *World, p Pt, oldOwner, newOwner Owner) {
	o := w.ObjectAt(p)
	t := w.Town(o.Town)
	if t != nil {
		t.ClearStatue(oldOwner)
	}
	if newOwner != OwnerInvalid && t != nil && !t.HasStatue(newOwner) {
		t.SetStatue(newOwner)
		w.grid.Cell(p).Owner = newOwner
		return
	}
	w.destroyObjectToTerrain(o)
}

// terraformFixedElevation: towers and lighthouses sit at an exact
// elevation; they never permit autoslope.
func terraformFixedElevation(w *World, p Pt, zNew int, slopeNew Slope, ctx CmdContext) (Money, error) {
	return w.ClearLandscape(p, ctx)
}

func terraformOwnedLand(w *World, p Pt, zNew int, slopeNew Slope, ctx CmdContext) (Money, error) {
	// Owned land remains unsold under its owner's terraforming.
	if w.grid.Cell(p).Owner == ctx.Company {
		return 0, nil
	}
	return w.ClearLandscape(p, ctx)
}

// terraformAutoslope lets a structure ride a gentle re-slope for the
// cost of a new foundation, as long as its floor height is preserved.
func (w *World) terraformAutoslope(p Pt, zNew int, slopeNew Slope, ctx CmdContext) (Money, error) {
	if w.autoslopeEnabled && !slopeNew.IsSteep() && zNew+slopeNew.MaxZDelta() == w.grid.MaxZ(p) {
		return Money(w.tune.Economy.FoundationCost), nil
	}
	return w.ClearLandscape(p, ctx)
}
