package world

// A head office has a discrete size level 0..4 stored in the aux byte
// of every footprint cell. Growth is monotonic and one level at a time.

var hqScoreBreakpoints = [...]int{170, 350, 520, 720}

const hqMaxSize = 4

func hqSizeForScore(score int) uint8 {
	var level uint8
	for _, bp := range hqScoreBreakpoints {
		if score < bp {
			break
		}
		level++
	}
	return level
}

// HQSize reads the size level from any cell of a head office.
func (w *World) HQSize(tile Pt) uint8 {
	return w.grid.Cell(tile).Aux
}

// UpdateCompanyHQ grows the head office at tile toward the level the
// performance score earns. It never shrinks and never skips levels;
// each step re-stamps the aux byte across the whole footprint.
func (w *World) UpdateCompanyHQ(tile Pt, score int) {
	if !w.grid.InBounds(tile) || !w.isObjectOfKind(tile, KindHQ) {
		return
	}
	target := hqSizeForScore(score)
	for w.HQSize(tile) < target {
		w.increaseAnimationStage(tile)
	}
}

// increaseAnimationStage bumps the aux byte of a whole structure.
func (w *World) increaseAnimationStage(tile Pt) {
	area := w.ObjectAt(tile).Location
	area.Each(func(p Pt) bool {
		w.grid.Cell(p).Aux++
		return true
	})
}

// hqTileLoop probabilistically emits passengers and mail from one HQ
// cell, scaled by size level and damped in a recession. The thresholds
// divide by footprint area so the whole office stays calibrated against
// the top town building no matter which cell is stepping.
func (w *World) hqTileLoop(tile Pt) {
	level := uint32(w.HQSize(tile)) + 1 // 1..5

	stations := w.stationsAround(Rect{Origin: tile, W: 2, H: 2})
	r := w.rng.Next()

	// Top town buildings generate 250; the top office makes 256.
	if r&0xFF < 256/4/(6-level) {
		amt := int(r&0xFF)/8/4 + 1
		if w.economyTrend <= 0 {
			amt = (amt + 1) / 2
		}
		w.moveGoodsToStation(CargoPassengers, amt, true, stations)
	}

	// Mail runs proportionally higher than a town building of the same
	// size; a huge commercial building generates unusually much of it.
	if (r>>8)&0xFF < 196/4/(6-level) {
		amt := int((r>>8)&0xFF)/8/4 + 1
		if w.economyTrend <= 0 {
			amt = (amt + 1) / 2
		}
		w.moveGoodsToStation(CargoMail, amt, true, stations)
	}
}

// hqAcceptedCargo adds one HQ cell's share of passenger and mail
// acceptance, always unconditionally accepted.
func (w *World) hqAcceptedCargo(tile Pt, acc *CargoAcceptance) {
	level := int(w.HQSize(tile)) + 1 // 1..5

	pax := level
	if pax < 1 {
		pax = 1
	}
	acc.Add(CargoPassengers, pax)
	acc.AlwaysAccepted[CargoPassengers] = true

	mail := level / 2
	if mail < 1 {
		mail = 1
	}
	acc.Add(CargoMail, mail)
	acc.AlwaysAccepted[CargoMail] = true
}
