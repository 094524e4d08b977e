package world

import (
	"testing"

	"tilemark.dev/internal/protocol"
)

func TestWorld_New_RejectsBadConfig(t *testing.T) {
	cats := testCatalogs(t)
	if _, err := New(WorldConfig{SizeX: 0, SizeY: 64}, testTuning(), cats); err == nil {
		t.Fatalf("zero-width world accepted")
	}

	delete(cats.Objects.Defs, KindHQ)
	if _, err := New(WorldConfig{TickRateHz: 5, SizeX: 64, SizeY: 64}, testTuning(), cats); err == nil {
		t.Fatalf("catalog missing a wired kind accepted")
	}
}

func TestCanonicalTheme(t *testing.T) {
	for in, want := range map[string]string{
		"toyland":   ThemeToyland,
		"Arctic":    ThemeArctic,
		" TROPIC ":  ThemeTropic,
		"temperate": ThemeTemperate,
	} {
		got, ok := CanonicalTheme(in)
		if !ok || got != want {
			t.Errorf("CanonicalTheme(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := CanonicalTheme("desert"); ok {
		t.Errorf("unknown theme accepted")
	}
}

func TestWorld_TickAndDate(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)

	for i := 0; i < ticksPerDay; i++ {
		w.StepOnce(nil, nil, nil)
	}
	if w.CurrentTick() != ticksPerDay {
		t.Fatalf("tick = %d, want %d", w.CurrentTick(), ticksPerDay)
	}
	if w.CurrentDate() != 1 {
		t.Fatalf("date = %d, want 1", w.CurrentDate())
	}
}

func TestWorld_JoinAndLeave(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)

	session, _ := joinSession(t, w, 2)
	if w.clients[session] == nil {
		t.Fatalf("session not registered")
	}

	w.StepOnce(nil, []string{session}, nil)
	if w.clients[session] != nil {
		t.Fatalf("session survived leave")
	}
}

func TestWorld_WelcomeCarriesWorldParams(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)

	out := make(chan []byte, 1)
	resp := make(chan JoinResponse, 1)
	w.handleJoin(JoinRequest{Name: "n", Company: Owner(2), Out: out, Resp: resp})
	jr := <-resp

	welcome := jr.Welcome
	if welcome.Type != protocol.TypeWelcome || welcome.ProtocolVersion != protocol.Version {
		t.Fatalf("welcome header = %+v", welcome)
	}
	if welcome.Company != 3 { // slot 2 is wire company 3
		t.Fatalf("wire company = %d, want 3", welcome.Company)
	}
	if welcome.WorldParams.SizeX != 64 || welcome.WorldParams.Seed != 1 {
		t.Fatalf("world params = %+v", welcome.WorldParams)
	}
	if welcome.Catalogs.ObjectsDigest == "" {
		t.Fatalf("objects digest missing")
	}

	// Spectators have no company slot on the wire.
	resp2 := make(chan JoinResponse, 1)
	w.handleJoin(JoinRequest{Name: "s", Company: OwnerNone, Out: out, Resp: resp2})
	if jr2 := <-resp2; jr2.Welcome.Company != 0 {
		t.Fatalf("spectator wire company = %d, want 0", jr2.Welcome.Company)
	}
}

func TestWorld_TickLogCarriesCommandsAndDigest(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	w.AddCompany("c0")
	flatten(w, Rect{Origin: Pt{10, 10}, W: 1, H: 1}, 5)

	sink := &memTickLog{}
	w.SetTickLogger(sink)

	session, _ := joinSession(t, w, 0)
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1",
		Cmd: protocol.CmdBuildObject, Kind: KindOwnedLand, X: 10, Y: 10,
	})

	if len(sink.entries) != 1 {
		t.Fatalf("tick log entries = %d, want 1", len(sink.entries))
	}
	e := sink.entries[0]
	if len(e.Commands) != 1 || e.Commands[0].Cmd.ID != "C1" {
		t.Fatalf("recorded commands = %+v", e.Commands)
	}
	if e.Digest != w.StateDigest() {
		t.Fatalf("logged digest does not match world state")
	}
}

type memTickLog struct {
	entries []TickLogEntry
}

func (m *memTickLog) WriteTick(e TickLogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

// Two worlds fed the same seed and command stream stay in lockstep.
func TestWorld_DeterministicReplay(t *testing.T) {
	run := func() string {
		w := newTestWorld(t)
		seedTown(w)
		w.AddCompany("c0")
		flatten(w, Rect{Origin: Pt{10, 10}, W: 4, H: 4}, 5)

		session, _ := joinSession(t, w, 0)
		cmds := []protocol.CommandMsg{
			{Type: protocol.TypeCommand, ID: "C1", Cmd: protocol.CmdBuildObject, Kind: KindHQ, X: 10, Y: 10},
			{Type: protocol.TypeCommand, ID: "C2", Cmd: protocol.CmdBuildObject, Kind: KindOwnedLand, X: 13, Y: 13},
			{Type: protocol.TypeCommand, ID: "C3", Cmd: protocol.CmdClearObject, X: 13, Y: 13},
		}
		for _, c := range cmds {
			stepWith(w, session, c)
		}
		for i := 0; i < 200; i++ {
			w.StepOnce(nil, nil, nil)
		}
		return w.StateDigest()
	}

	if a, b := run(), run(); a != b {
		t.Fatalf("replay diverged:\n%s\n%s", a, b)
	}
}

func TestWorld_TileLoopReachesObjects(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	c := w.AddCompany("c0")
	buildHQAt(t, w, c, Pt{10, 10})
	w.UpdateCompanyHQ(Pt{10, 10}, 99999)
	st := w.AddStation(0, Rect{Origin: Pt{8, 8}, W: 6, H: 6})

	// Enough full map sweeps for the office to emit something.
	for i := 0; i < 16*400; i++ {
		w.StepOnce(nil, nil, nil)
	}
	if st.Received[CargoPassengers] == 0 {
		t.Fatalf("tile loop never reached the office")
	}
}
