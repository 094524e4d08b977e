package world

import (
	"tilemark.dev/internal/protocol"
	"tilemark.dev/internal/sim/catalogs"
)

// BuildObject validates and (when ctx.Commit) places one object of the
// given kind with its origin at tile. The returned total is the sum of
// all terrain-clearing costs plus the kind's build cost per footprint
// tile, identical in estimate and commit mode.
//
// town overrides owner-town resolution; InvalidTown resolves to the
// town nearest the tile.
func (w *World) BuildObject(kind string, tile Pt, town TownID, ctx CmdContext) (Money, error) {
	def, ok := w.catalogs.Objects.Defs[kind]
	if !ok || !def.Enabled {
		return 0, cmdErr(protocol.ErrUnavailable, "object kind not available")
	}

	if def.HasFlag(catalogs.FlagOnlyWorldGen) && (!ctx.WorldGen || ctx.Company.IsCompany()) {
		return 0, cmdErr(protocol.ErrWrongPhase, "only placeable during world creation")
	}
	if def.HasFlag(catalogs.FlagOnlyInGame) && (ctx.WorldGen || !ctx.Company.IsCompany()) {
		return 0, cmdErr(protocol.ErrWrongPhase, "only placeable by a company in-game")
	}

	if !w.objects.CanAllocate(kind, def.MaxCount) {
		return 0, cmdErr(protocol.ErrTooManyObjects, "too many objects")
	}
	if w.TownCount() == 0 {
		return 0, cmdErr(protocol.ErrNoTowns, "must found a settlement first")
	}

	if !w.grid.InBounds(tile) {
		return 0, cmdErr(protocol.ErrInvalidTarget, "tile outside the map")
	}
	area := Rect{Origin: tile, W: def.SizeX, H: def.SizeY}

	if !def.HasFlag(catalogs.FlagAllowUnderBridge) {
		bridged := false
		area.Each(func(p Pt) bool {
			if w.grid.InBounds(p) && w.grid.Cell(p).BridgeAbove {
				bridged = true
				return false
			}
			return true
		})
		if bridged {
			return 0, cmdErr(protocol.ErrBlocked, "must demolish the overhead crossing first")
		}
	}

	var cost Money
	estimate := ctx
	estimate.Commit = false

	if kind == KindOwnedLand {
		// Owned land is special: any slope goes, only the generic
		// clearing rules apply. Validate with an estimate here; the
		// committed clear runs after all validation has passed.
		inner := estimate
		inner.Auto = true
		c, err := w.ClearLandscape(tile, inner)
		if err != nil {
			return 0, err
		}
		cost += c
	} else {
		c, err := w.checkFlatLand(area, estimate)
		if err != nil {
			return 0, err
		}
		cost += c
	}

	hqScore := 0
	switch kind {
	case KindTransmitter, KindLighthouse:
		if !w.grid.Cell(tile).Slope.IsFlat() {
			return 0, cmdErr(protocol.ErrFlatLandRequired, "flat land required")
		}

	case KindOwnedLand:
		if w.isObjectOfKind(tile, KindOwnedLand) && w.grid.Cell(tile).Owner == ctx.Company {
			return 0, cmdErr(protocol.ErrAlreadyOwned, "you already own this parcel")
		}

	case KindHQ:
		c := w.Company(ctx.Company)
		if c == nil {
			return 0, cmdErr(protocol.ErrWrongPhase, "headquarters need an acting company")
		}
		if c.HasHQ {
			// Relocation: the old office goes regardless of whose tiles
			// surround it, so the clear runs with Forced set.
			forced := ctx
			forced.Forced = true
			rc, err := w.ClearObject(c.HQ, forced)
			if err != nil {
				return 0, err
			}
			cost += rc
		}
		if ctx.Commit {
			hqScore = w.UpdateCompanyRatingAndValue(c)
			c.HasHQ = true
			c.HQ = tile
		}
	}

	cost += Money(def.BuildCost) * Money(def.FootprintArea())

	if ctx.Commit {
		// Validation already approved every clear below; run them for
		// real so displaced objects leave the registry before the new
		// footprint goes down. Failing now is a logic-contract violation.
		if kind == KindOwnedLand {
			inner := ctx
			inner.Auto = true
			if _, err := w.ClearLandscape(tile, inner); err != nil {
				panic("landscape clear failed after validation: " + err.Error())
			}
		} else if _, err := w.checkFlatLand(area, ctx); err != nil {
			panic("landscape clear failed after validation: " + err.Error())
		}
		o := w.placeObject(kind, tile, ctx.Company, town)
		switch kind {
		case KindHQ:
			w.UpdateCompanyHQ(tile, hqScore)
		case KindStatue:
			if t := w.Town(o.Town); t != nil {
				t.SetStatue(ctx.Company)
			}
		}
		w.auditEvent(ctx.actor(), "BUILD", kind, tile, cost, "")
	}

	return cost, nil
}

// placeObject unconditionally creates the registry record and stamps
// every footprint cell. Callers have already validated the area.
func (w *World) placeObject(kind string, tile Pt, owner Owner, town TownID) *Object {
	def := w.catalogs.Objects.Defs[kind]
	tag := w.catalogs.Objects.Index[kind]
	area := Rect{Origin: tile, W: def.SizeX, H: def.SizeY}

	id, err := w.objects.Allocate()
	if err != nil {
		// CanAllocate ran during validation; the pool cannot be full here.
		panic(err)
	}
	o := w.objects.Get(id)
	o.Kind = kind
	o.Location = area
	o.BuildDate = w.date
	if town == InvalidTown {
		t := w.ClosestTown(tile)
		if t == nil {
			panic("placeObject with no towns in the world")
		}
		town = t.ID
	}
	o.Town = town

	area.Each(func(p Pt) bool {
		wc := WaterClassInvalid
		if c := w.grid.Cell(p); c.Type == TileWater {
			wc = c.Water
		}
		w.grid.MakeObject(p, tag, owner, id, wc)
		return true
	})

	w.objects.IncCount(kind)
	return o
}
