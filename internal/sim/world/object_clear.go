package world

import (
	"tilemark.dev/internal/protocol"
	"tilemark.dev/internal/sim/catalogs"
)

// ClearObject validates and (when ctx.Commit) removes the object
// occupying tile. An object is only ever cleared as a whole: the
// operation targets its full rectangle no matter which cell was hit.
func (w *World) ClearObject(tile Pt, ctx CmdContext) (Money, error) {
	if w.grid.TileType(tile) != TileObject {
		return 0, cmdErr(protocol.ErrInvalidTarget, "no object here")
	}
	kind := w.objectKindAt(tile)
	def := w.catalogs.Objects.Defs[kind]
	o := w.ObjectAt(tile)
	area := o.Location
	tileOwner := w.grid.Cell(tile).Owner

	// Permission ladder, first match wins. A forced clear skips it all.
	if !ctx.Forced {
		autoRemove := def.HasFlag(catalogs.FlagAutoRemove)
		switch {
		case !autoRemove && ctx.Auto:
			// Overbuilding never silently removes these.
			return 0, cmdErr(protocol.ErrInTheWay, def.Name+" in the way")
		case ctx.WorldGen:
			// No further limitations during world creation.
		case tileOwner == OwnerNone:
			if !ctx.Bulldozer {
				return 0, cmdErr(protocol.ErrRemovalForbidden, "not permitted")
			}
		case tileOwner != ctx.Company:
			return 0, cmdErr(protocol.ErrOwnedByOther, "owned by another party")
		case !autoRemove && !ctx.Bulldozer:
			return 0, cmdErr(protocol.ErrRemovalForbidden, "not permitted")
		}
	}

	cost := Money(def.ClearCost) * Money(area.Area())
	if def.HasFlag(catalogs.FlagClearIncome) {
		cost = -cost
	}

	switch kind {
	case KindHQ:
		c := w.Company(tileOwner)
		if c != nil {
			if ctx.Commit {
				c.HasHQ = false
				c.HQ = Pt{}
				w.InvalidateHQCargo(c.ID)
			}
			// Relocating the company costs 1% of its value, replacing
			// the generic clearing cost.
			cost = w.companyValue(c) / 100
		}

	case KindStatue:
		if ctx.Commit {
			if t := w.Town(o.Town); t != nil {
				t.ClearStatue(tileOwner)
			}
		}
	}

	if ctx.Commit {
		w.objects.DecCount(kind)
		area.Each(func(p Pt) bool {
			w.grid.MakeWaterKeepingClass(p, w.grid.Cell(p).Owner)
			return true
		})
		w.objects.Destroy(o.ID)
		w.auditEvent(ctx.actor(), "CLEAR", kind, tile, cost, "")
	}

	return cost, nil
}

// companyValue prefers the stored value and otherwise recomputes it on
// the fly. Nothing is written back: this runs on the estimate path too.
func (w *World) companyValue(c *Company) Money {
	if c.Value > 0 {
		return c.Value
	}
	return w.computeCompanyValue(c)
}
