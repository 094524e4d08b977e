package world

// Town is the minimal town record this subsystem touches: a center for
// nearest-town resolution and the per-company statue bitmask.
type Town struct {
	ID     TownID
	Name   string
	Center Pt

	// Statues has bit c set while company c holds a statue in this town.
	Statues uint16

	// Updated counts toward the town record refresh notifications the
	// statue operations must emit.
	Updated uint64
}

func (w *World) Town(id TownID) *Town {
	return w.towns[id]
}

func (w *World) AddTown(name string, center Pt) *Town {
	w.nextTownNum++
	t := &Town{ID: TownID(w.nextTownNum), Name: name, Center: center}
	w.towns[t.ID] = t
	return t
}

func (w *World) TownCount() int { return len(w.towns) }

// ClosestTown picks the town whose center is nearest to p, breaking
// ties by lowest id so resolution stays deterministic.
func (w *World) ClosestTown(p Pt) *Town {
	var best *Town
	bestDist := int(^uint(0) >> 1)
	for _, t := range w.towns {
		dx := t.Center.X - p.X
		if dx < 0 {
			dx = -dx
		}
		dy := t.Center.Y - p.Y
		if dy < 0 {
			dy = -dy
		}
		d := dx + dy
		if best == nil || d < bestDist || (d == bestDist && t.ID < best.ID) {
			best = t
			bestDist = d
		}
	}
	return best
}

func (t *Town) HasStatue(company Owner) bool {
	return company.IsCompany() && t.Statues&(1<<company) != 0
}

func (t *Town) SetStatue(company Owner) {
	if company.IsCompany() {
		t.Statues |= 1 << company
		t.Updated++
	}
}

func (t *Town) ClearStatue(company Owner) {
	if company.IsCompany() {
		t.Statues &^= 1 << company
		t.Updated++
	}
}
