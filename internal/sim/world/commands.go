package world

import (
	"encoding/json"

	"tilemark.dev/internal/protocol"
)

// applyCommand runs one client command against the engine and answers
// with a RESULT on the issuing session's channel.
func (w *World) applyCommand(env CommandEnvelope, nowTick uint64) {
	cs := w.clients[env.SessionID]
	if cs == nil {
		return
	}
	cmd := env.Cmd

	ctx := CmdContext{
		Commit:    !cmd.Estimate,
		Bulldozer: cmd.Bulldozer,
		Company:   cs.Company,
	}
	tile := Pt{X: cmd.X, Y: cmd.Y}

	var cost Money
	var err error
	switch cmd.Cmd {
	case protocol.CmdBuildObject:
		town := InvalidTown
		if cmd.Town != "" {
			if t := w.townByName(cmd.Town); t != nil {
				town = t.ID
			} else {
				err = cmdErr(protocol.ErrInvalidTarget, "no such town")
			}
		}
		if err == nil {
			cost, err = w.buildAffordable(cmd.Kind, tile, town, ctx)
		}

	case protocol.CmdClearObject:
		cost, err = w.ClearObject(tile, ctx)
		if err == nil {
			w.settle(ctx, cost)
		}

	case protocol.CmdQueryTile:
		w.sendQueryResult(cs, nowTick, cmd, tile)
		return

	default:
		err = cmdErr(protocol.ErrBadRequest, "unknown command")
	}

	res := protocol.ResultMsg{
		Type: protocol.TypeResult,
		Tick: nowTick,
		Ref:  cmd.ID,
		OK:   err == nil,
		Cost: int64(cost),
	}
	if err != nil {
		res.Code = CmdCode(err)
		res.Message = err.Error()
	}
	w.sendTo(cs, res)
}

// buildAffordable wraps Build with the balance check the player-facing
// path needs: a committed build must be payable up front. Estimates
// pass through so the UI can display unaffordable prices.
func (w *World) buildAffordable(kind string, tile Pt, town TownID, ctx CmdContext) (Money, error) {
	if ctx.Commit {
		estimate := ctx
		estimate.Commit = false
		cost, err := w.BuildObject(kind, tile, town, estimate)
		if err != nil {
			return 0, err
		}
		if c := w.Company(ctx.Company); c != nil && cost > 0 && c.Balance < cost {
			return 0, cmdErr(protocol.ErrBlocked, "not enough cash")
		}
	}
	cost, err := w.BuildObject(kind, tile, town, ctx)
	if err != nil {
		return 0, err
	}
	w.settle(ctx, cost)
	return cost, nil
}

func (w *World) sendQueryResult(cs *clientState, nowTick uint64, cmd protocol.CommandMsg, tile Pt) {
	res := protocol.ResultMsg{
		Type: protocol.TypeResult,
		Tick: nowTick,
		Ref:  cmd.ID,
	}
	if w.grid.TileType(tile) != TileObject {
		res.Code = protocol.ErrInvalidTarget
		res.Message = "no object here"
		w.sendTo(cs, res)
		return
	}
	desc := w.Describe(tile)
	res.OK = true
	res.Tile = &protocol.TileRef{X: tile.X, Y: tile.Y}
	res.Message = desc.Name
	w.sendTo(cs, res)

	// A click on a head office additionally surfaces the company view.
	if owner, ok := w.ClickTile(tile); ok {
		w.sendTo(cs, protocol.ResultMsg{
			Type:    protocol.TypeEvent,
			Tick:    nowTick,
			Ref:     cmd.ID,
			OK:      true,
			Message: "SHOW_COMPANY",
			Company: int(owner) + 1, // wire format: 1-based company slot
		})
	}
}

func (w *World) townByName(name string) *Town {
	var best *Town
	for _, t := range w.towns {
		if t.Name == name && (best == nil || t.ID < best.ID) {
			best = t
		}
	}
	return best
}

// sendTo never blocks the world loop; a client that cannot keep up
// loses messages.
func (w *World) sendTo(cs *clientState, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case cs.Out <- b:
	default:
	}
}
