package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// StateDigest hashes everything the simulation owns: grid cells, the
// object pool, per-kind counts, companies, and towns. Two worlds fed
// the same seed and command stream must produce identical digests.
func (w *World) StateDigest() string {
	h := sha256.New()
	var buf [8]byte

	u64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	s := func(v string) {
		u64(uint64(len(v)))
		h.Write([]byte(v))
	}

	u64(uint64(w.cfg.SizeX))
	u64(uint64(w.cfg.SizeY))
	u64(uint64(w.date))

	for i := range w.grid.cells {
		c := &w.grid.cells[i]
		u64(uint64(c.Type) | uint64(c.Height)<<8 | uint64(c.Slope)<<16 |
			uint64(c.Owner)<<24 | uint64(c.Kind)<<32 | uint64(c.Aux)<<40 |
			uint64(c.Water)<<48)
		u64(uint64(c.Object))
	}

	for _, o := range w.objects.All() {
		u64(uint64(o.ID))
		s(o.Kind)
		u64(uint64(o.Location.Origin.X))
		u64(uint64(o.Location.Origin.Y))
		u64(uint64(o.Location.W))
		u64(uint64(o.Location.H))
		u64(uint64(o.Town))
		u64(uint64(o.BuildDate))
	}

	// Zero counts are indistinguishable from never-built kinds.
	kinds := make([]string, 0, len(w.objects.counts))
	for k, n := range w.objects.counts {
		if n > 0 {
			kinds = append(kinds, k)
		}
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		s(k)
		u64(uint64(w.objects.counts[k]))
	}

	for id := Owner(0); id < MaxCompanies; id++ {
		c := w.companies[id]
		if c == nil {
			continue
		}
		u64(uint64(c.ID))
		u64(uint64(c.Balance))
		u64(uint64(c.Value))
		if c.HasHQ {
			u64(1)
			u64(uint64(c.HQ.X))
			u64(uint64(c.HQ.Y))
		} else {
			u64(0)
		}
	}

	townIDs := make([]int, 0, len(w.towns))
	for id := range w.towns {
		townIDs = append(townIDs, int(id))
	}
	sort.Ints(townIDs)
	for _, id := range townIDs {
		t := w.towns[TownID(id)]
		u64(uint64(t.ID))
		s(t.Name)
		u64(uint64(t.Center.X))
		u64(uint64(t.Center.Y))
		u64(uint64(t.Statues))
	}

	return hex.EncodeToString(h.Sum(nil))
}
