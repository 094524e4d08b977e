package world

import (
	"fmt"

	"tilemark.dev/internal/protocol"
)

// CmdContext is the execution context threaded through every command.
// With Commit unset the call is an estimate: full validation and cost
// computation, zero mutation. With Commit set the identical validation
// runs first and mutations apply only after it passes, so a failed call
// never leaves partial state behind.
type CmdContext struct {
	Commit    bool
	Auto      bool  // automatic overbuild clearing, not an explicit order
	Bulldozer bool  // elevated privilege for clearing ownerless objects
	Forced    bool  // bypass every ownership/permission check
	WorldGen  bool  // world-creation phase, no acting company
	Company   Owner // acting company; OwnerNone during world generation
}

// CmdError is a recoverable command failure carrying a protocol code.
type CmdError struct {
	Code    string
	Message string
}

func (e *CmdError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func cmdErr(code, msg string) *CmdError {
	if !protocol.IsKnownCode(code) {
		panic(fmt.Sprintf("unknown command error code %q", code))
	}
	return &CmdError{Code: code, Message: msg}
}

// CmdCode extracts the protocol code from a command error.
func CmdCode(err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := err.(*CmdError); ok {
		return ce.Code
	}
	return protocol.ErrInternal
}

// ClearLandscape is the generic land-clearing operation: bare land
// costs the configured clearing fee, object tiles re-enter ClearObject,
// water and void cannot be cleared this way. Like every command it
// honors the estimate/commit contract.
func (w *World) ClearLandscape(p Pt, ctx CmdContext) (Money, error) {
	if !w.grid.InBounds(p) {
		return 0, cmdErr(protocol.ErrInvalidTarget, "tile outside the map")
	}
	c := w.grid.Cell(p)
	switch c.Type {
	case TileClear:
		cost := Money(w.tune.Economy.ClearGrassCost)
		if ctx.Commit {
			w.grid.DoClearSquare(p)
		}
		return cost, nil
	case TileObject:
		return w.ClearObject(p, ctx)
	case TileWater:
		return 0, cmdErr(protocol.ErrTerrain, "cannot build on water")
	default:
		return 0, cmdErr(protocol.ErrTerrain, "unsuitable terrain")
	}
}

// checkFlatLand walks the whole area checking it is flat, level, and
// clearable, accumulating the clearing cost. The inner clears run as
// automatic overbuild removal, so kinds that refuse auto-removal fail
// here as "in the way". With ctx.Commit unset nothing mutates; the
// Build path validates with an estimate first and re-runs the walk in
// commit mode once every other check has passed, so displaced objects
// leave the registry before the new footprint is stamped.
func (w *World) checkFlatLand(area Rect, ctx CmdContext) (Money, error) {
	inner := ctx
	inner.Auto = true

	var total Money
	wantZ := -1
	var failure error
	area.Each(func(p Pt) bool {
		if !w.grid.InBounds(p) {
			failure = cmdErr(protocol.ErrInvalidTarget, "area extends outside the map")
			return false
		}
		c := w.grid.Cell(p)
		if c.Type == TileVoid || c.Type == TileWater {
			failure = cmdErr(protocol.ErrTerrain, "unsuitable terrain")
			return false
		}
		if !c.Slope.IsFlat() {
			failure = cmdErr(protocol.ErrFlatLandRequired, "flat land required")
			return false
		}
		if wantZ < 0 {
			wantZ = int(c.Height)
		} else if int(c.Height) != wantZ {
			failure = cmdErr(protocol.ErrFlatLandRequired, "land must be level")
			return false
		}
		cost, err := w.ClearLandscape(p, inner)
		if err != nil {
			failure = err
			return false
		}
		total += cost
		return true
	})
	if failure != nil {
		return 0, failure
	}
	return total, nil
}

func (ctx CmdContext) actor() string {
	switch {
	case ctx.WorldGen:
		return "worldgen"
	case ctx.Company.IsCompany():
		return fmt.Sprintf("company_%d", ctx.Company)
	default:
		return "nobody"
	}
}
