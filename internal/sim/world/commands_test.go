package world

import (
	"encoding/json"
	"testing"

	"tilemark.dev/internal/protocol"
)

// joinSession wires a fake client straight into the world loop.
func joinSession(t *testing.T, w *World, company Owner) (string, chan []byte) {
	t.Helper()
	out := make(chan []byte, 64)
	resp := make(chan JoinResponse, 1)
	w.handleJoin(JoinRequest{Name: "test", Company: company, Out: out, Resp: resp})
	jr := <-resp
	return jr.Welcome.SessionID, out
}

func recvResult(t *testing.T, out chan []byte) protocol.ResultMsg {
	t.Helper()
	select {
	case b := <-out:
		var res protocol.ResultMsg
		if err := json.Unmarshal(b, &res); err != nil {
			t.Fatalf("bad result json: %v", err)
		}
		return res
	default:
		t.Fatalf("no message on session channel")
		return protocol.ResultMsg{}
	}
}

func stepWith(w *World, session string, cmd protocol.CommandMsg) {
	w.StepOnce(nil, nil, []CommandEnvelope{{SessionID: session, Cmd: cmd}})
}

func TestApplyCommand_BuildAndSettle(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	c := w.AddCompany("c0")
	flatten(w, Rect{Origin: Pt{10, 10}, W: 1, H: 1}, 5)

	session, out := joinSession(t, w, 0)
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1",
		Cmd: protocol.CmdBuildObject, Kind: KindStatue, X: 10, Y: 10,
	})

	res := recvResult(t, out)
	if !res.OK || res.Ref != "C1" {
		t.Fatalf("build failed: %+v", res)
	}
	if res.Cost != 310 { // 10 clearing + 300 build
		t.Fatalf("cost = %d, want 310", res.Cost)
	}
	if c.Balance != Money(100000-310) {
		t.Fatalf("balance = %d, want %d", c.Balance, 100000-310)
	}
}

func TestApplyCommand_EstimateDoesNotCharge(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	c := w.AddCompany("c0")
	flatten(w, Rect{Origin: Pt{10, 10}, W: 1, H: 1}, 5)

	session, out := joinSession(t, w, 0)
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1",
		Cmd: protocol.CmdBuildObject, Kind: KindStatue, X: 10, Y: 10,
		Estimate: true,
	})

	res := recvResult(t, out)
	if !res.OK || res.Cost != 310 {
		t.Fatalf("estimate = %+v", res)
	}
	if c.Balance != 100000 {
		t.Fatalf("estimate charged the company: %d", c.Balance)
	}
	if w.objects.Live() != 0 {
		t.Fatalf("estimate placed an object")
	}
}

func TestApplyCommand_NotEnoughCash(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	c := w.AddCompany("c0")
	c.Balance = 50
	flatten(w, Rect{Origin: Pt{10, 10}, W: 1, H: 1}, 5)

	session, out := joinSession(t, w, 0)
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1",
		Cmd: protocol.CmdBuildObject, Kind: KindStatue, X: 10, Y: 10,
	})

	res := recvResult(t, out)
	if res.OK || res.Code != protocol.ErrBlocked {
		t.Fatalf("want E_BLOCKED, got %+v", res)
	}
	if c.Balance != 50 {
		t.Fatalf("failed build moved money: %d", c.Balance)
	}
	if w.objects.Live() != 0 {
		t.Fatalf("failed build placed an object")
	}
}

func TestApplyCommand_ClearEarnsIncome(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	c := w.AddCompany("c0")
	flatten(w, Rect{Origin: Pt{10, 10}, W: 1, H: 1}, 5)

	session, out := joinSession(t, w, 0)
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1",
		Cmd: protocol.CmdBuildObject, Kind: KindOwnedLand, X: 10, Y: 10,
	})
	if res := recvResult(t, out); !res.OK {
		t.Fatalf("buy failed: %+v", res)
	}
	bought := c.Balance

	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C2",
		Cmd: protocol.CmdClearObject, X: 10, Y: 10,
	})
	res := recvResult(t, out)
	if !res.OK || res.Cost != -40 {
		t.Fatalf("sale = %+v, want income 40", res)
	}
	if c.Balance != bought+40 {
		t.Fatalf("balance = %d, want %d", c.Balance, bought+40)
	}
}

func TestApplyCommand_UnknownTown(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	w.AddCompany("c0")
	flatten(w, Rect{Origin: Pt{10, 10}, W: 1, H: 1}, 5)

	session, out := joinSession(t, w, 0)
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1",
		Cmd: protocol.CmdBuildObject, Kind: KindStatue, X: 10, Y: 10,
		Town: "Atlantis",
	})

	res := recvResult(t, out)
	if res.OK || res.Code != protocol.ErrInvalidTarget {
		t.Fatalf("want E_INVALID_TARGET, got %+v", res)
	}
}

func TestApplyCommand_QueryTile(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	w.AddCompany("c0")
	flatten(w, Rect{Origin: Pt{10, 10}, W: 2, H: 2}, 5)

	session, out := joinSession(t, w, 0)
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1",
		Cmd: protocol.CmdBuildObject, Kind: KindHQ, X: 10, Y: 10,
	})
	recvResult(t, out)

	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C2",
		Cmd: protocol.CmdQueryTile, X: 11, Y: 11,
	})
	res := recvResult(t, out)
	if !res.OK || res.Message != "Company Headquarters" {
		t.Fatalf("query = %+v", res)
	}
	if res.Tile == nil || res.Tile.X != 11 || res.Tile.Y != 11 {
		t.Fatalf("query tile ref = %+v", res.Tile)
	}

	// Clicking a head office also surfaces the company view event.
	ev := recvResult(t, out)
	if ev.Type != protocol.TypeEvent || ev.Message != "SHOW_COMPANY" || ev.Company != 1 {
		t.Fatalf("company event = %+v", ev)
	}

	// Empty ground answers with an error, not a description.
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C3",
		Cmd: protocol.CmdQueryTile, X: 30, Y: 30,
	})
	res = recvResult(t, out)
	if res.OK || res.Code != protocol.ErrInvalidTarget {
		t.Fatalf("empty query = %+v", res)
	}
}

func TestApplyCommand_UnknownCommand(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	session, out := joinSession(t, w, OwnerNone)

	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1", Cmd: "DANCE", X: 1, Y: 1,
	})
	res := recvResult(t, out)
	if res.OK || res.Code != protocol.ErrBadRequest {
		t.Fatalf("want E_BAD_REQUEST, got %+v", res)
	}
}

func TestApplyCommand_SpectatorCannotBuild(t *testing.T) {
	w := newTestWorld(t)
	seedTown(w)
	flatten(w, Rect{Origin: Pt{10, 10}, W: 1, H: 1}, 5)

	session, out := joinSession(t, w, OwnerNone)
	stepWith(w, session, protocol.CommandMsg{
		Type: protocol.TypeCommand, ID: "C1",
		Cmd: protocol.CmdBuildObject, Kind: KindStatue, X: 10, Y: 10,
	})
	res := recvResult(t, out)
	if res.OK || res.Code != protocol.ErrWrongPhase {
		t.Fatalf("spectator build = %+v", res)
	}
}
