package world

import (
	"testing"

	"tilemark.dev/internal/sim/catalogs"
	"tilemark.dev/internal/sim/tuning"
)

func testTuning() tuning.Tuning { return tuning.Defaults() }

func testCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func newTestWorldWith(t *testing.T, theme string, cats *catalogs.Catalogs) *World {
	t.Helper()
	w, err := New(WorldConfig{
		ID:         "test",
		TickRateHz: 5,
		SizeX:      64,
		SizeY:      64,
		Seed:       1,
		Theme:      theme,
	}, tuning.Defaults(), cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

func newTestWorld(t *testing.T) *World {
	return newTestWorldWith(t, ThemeTemperate, testCatalogs(t))
}

// flatten stamps the area to bare flat clear land at the given height.
func flatten(w *World, area Rect, height uint8) {
	area.Each(func(p Pt) bool {
		*w.grid.Cell(p) = Cell{
			Type:   TileClear,
			Height: height,
			Owner:  OwnerNone,
			Object: InvalidObject,
		}
		return true
	})
}

func seedTown(w *World) *Town {
	return w.AddTown("Testtown", Pt{X: 32, Y: 32})
}

func worldgenCommit() CmdContext {
	return CmdContext{Commit: true, WorldGen: true, Company: OwnerNone}
}

func companyCommit(id Owner) CmdContext {
	return CmdContext{Commit: true, Company: id}
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("want error %s, got nil", code)
	}
	if got := CmdCode(err); got != code {
		t.Fatalf("want error %s, got %s (%v)", code, got, err)
	}
}

type memAudit struct {
	entries []AuditEntry
}

func (m *memAudit) WriteAudit(e AuditEntry) error {
	m.entries = append(m.entries, e)
	return nil
}
