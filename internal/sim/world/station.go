package world

// Station is a transport endpoint able to pick up cargo generated by
// object tiles. Routing internals are out of scope; delivery records
// per-cargo tallies that tests and the index can read back.
type Station struct {
	ID       int
	Owner    Owner
	Coverage Rect

	Received  map[string]int
	HQSourced int
}

func (w *World) AddStation(owner Owner, coverage Rect) *Station {
	w.nextStationNum++
	st := &Station{
		ID:       w.nextStationNum,
		Owner:    owner,
		Coverage: coverage,
		Received: map[string]int{},
	}
	w.stations = append(w.stations, st)
	return st
}

// stationsAround finds stations whose coverage intersects the area,
// in registration order (deterministic).
func (w *World) stationsAround(area Rect) []*Station {
	var out []*Station
	for _, st := range w.stations {
		if st.Coverage.Intersects(area) {
			out = append(out, st)
		}
	}
	return out
}

// moveGoodsToStation hands cargo to the first eligible station. Cargo
// sourced from an HQ also bumps the en-route counter so HQ clearing can
// invalidate it.
func (w *World) moveGoodsToStation(cargo string, amount int, fromHQ bool, stations []*Station) int {
	if amount <= 0 || len(stations) == 0 {
		return 0
	}
	st := stations[0]
	st.Received[cargo] += amount
	if fromHQ {
		st.HQSourced += amount
	}
	return amount
}
