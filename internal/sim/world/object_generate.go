package world

// World-generation placement: scatter radio towers across the interior
// and lighthouses along the coast. Both passes run through the Build
// command in commit mode with no acting company, so later candidates
// see earlier placements and all invariants hold by construction.

const genProgressClass = "OBJECTS"

const (
	transmitterMinHeight = 4
	lighthouseMaxHeight  = 2
	lighthouseWalkSteps  = 19
)

// ScaleByMapArea scales a 256x256 reference count by map area,
// rounding to nearest.
func (w *World) ScaleByMapArea(n int) int {
	const base = 256 * 256
	return (n*w.cfg.SizeX*w.cfg.SizeY + base/2) / base
}

// ScaleByMapSide scales a 256x256 reference count by the map's linear
// border size, rounding to nearest.
func (w *World) ScaleByMapSide(n int) int {
	const base = 256 + 256
	return (n*(w.cfg.SizeX+w.cfg.SizeY) + base/2) / base
}

func (w *World) GenerateObjects() {
	if w.cfg.Theme == ThemeToyland {
		return
	}

	towersToBuild := w.ScaleByMapArea(w.tune.Gen.TransmitterBase)
	lighthousesToBuild := 0
	if w.cfg.Theme != ThemeTropic {
		lighthousesToBuild = w.ScaleByMapSide(int(w.rng.Next()&3) + w.tune.Gen.LighthouseBase)
	}

	// On hard-edged maps, scale the lighthouse budget by the fraction of
	// border cells that are actually water; inland-heavy maps should not
	// burn the whole budget on hopeless perimeter picks.
	if w.cfg.HardEdges && lighthousesToBuild != 0 {
		maxX, maxY := w.cfg.SizeX-1, w.cfg.SizeY-1
		numWater := 0
		for x := 0; x < maxX; x++ {
			if w.grid.TileType(Pt{x, 1}) == TileWater {
				numWater++
			}
			if w.grid.TileType(Pt{x, maxY - 1}) == TileWater {
				numWater++
			}
		}
		for y := 1; y < maxY-1; y++ {
			if w.grid.TileType(Pt{1, y}) == TileWater {
				numWater++
			}
			if w.grid.TileType(Pt{maxX - 1, y}) == TileWater {
				numWater++
			}
		}
		// -6: the outer ring is void (-2) and the corners are counted
		// twice (-4).
		lighthousesToBuild = lighthousesToBuild * numWater / (2*maxY + 2*maxX - 6)
	}

	w.progressTotal(towersToBuild + lighthousesToBuild)

	w.generateTransmitters(towersToBuild)
	w.generateLighthouses(lighthousesToBuild)
}

func (w *World) generateTransmitters(toBuild int) {
	if toBuild <= 0 {
		return
	}
	ctx := CmdContext{Commit: true, WorldGen: true, Company: OwnerNone}

	for i := w.ScaleByMapArea(w.tune.Gen.TransmitterTries); i != 0; i-- {
		tile := w.randomTile()
		c := w.grid.Cell(tile)
		if c.Type != TileClear || !c.Slope.IsFlat() || int(c.Height) < transmitterMinHeight || c.BridgeAbove {
			continue
		}
		if w.isRadioTowerNearby(tile) {
			continue
		}
		if _, err := w.BuildObject(KindTransmitter, tile, InvalidTown, ctx); err != nil {
			continue
		}
		w.progressStep()
		if toBuild--; toBuild == 0 {
			break
		}
	}
}

// isRadioTowerNearby scans the 9x9 neighborhood around tile, clipped to
// the map, for an existing transmitter.
func (w *World) isRadioTowerNearby(tile Pt) bool {
	x0, y0 := tile.X-4, tile.Y-4
	x1, y1 := tile.X+4, tile.Y+4
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w.cfg.SizeX-1 {
		x1 = w.cfg.SizeX - 1
	}
	if y1 > w.cfg.SizeY-1 {
		y1 = w.cfg.SizeY - 1
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if w.isObjectOfKind(Pt{x, y}, KindTransmitter) {
				return true
			}
		}
	}
	return false
}

// Edge walk table for the lighthouse pass: for each of the four border
// segments, the inward step direction. Segment order matches the
// cumulative-perimeter decoding below.
var lighthouseWalkDir = [4]Pt{
	{-1, 0}, // east border, walking west
	{0, 1},  // north border, walking south
	{1, 0},  // west border, walking east
	{0, -1}, // south border, walking north
}

func (w *World) generateLighthouses(toBuild int) {
	if toBuild <= 0 {
		return
	}
	maxX, maxY := w.cfg.SizeX-1, w.cfg.SizeY-1
	ctx := CmdContext{Commit: true, WorldGen: true, Company: OwnerNone}

	for loop := 0; loop < w.tune.Gen.LighthouseTries && toBuild != 0; loop++ {
		r := w.rng.Next()

		// Pick a point on the outer perimeter, biased by a uniform
		// cumulative-perimeter offset so long edges get their share.
		perimeter := int((r>>16)&0xFFFF)%(2*(maxX+maxY)) - maxY
		dir := 0
		for ; perimeter > 0; dir++ {
			if dir&1 == 0 {
				perimeter -= maxX
			} else {
				perimeter -= maxY
			}
		}
		dir &= 3

		var tile Pt
		switch dir {
		case 0:
			tile = Pt{maxX - 1, int(r) % maxY}
		case 1:
			tile = Pt{int(r) % maxX, 1}
		case 2:
			tile = Pt{1, int(r) % maxY}
		default:
			tile = Pt{int(r) % maxX, maxY - 1}
		}

		// Only coastlines: the border cell itself must be sea.
		if w.grid.TileType(tile) != TileWater {
			continue
		}

		for j := 0; j < lighthouseWalkSteps; j++ {
			if w.grid.InBounds(tile) {
				c := w.grid.Cell(tile)
				if c.Type == TileClear && c.Slope.IsFlat() && int(c.Height) <= lighthouseMaxHeight && !c.BridgeAbove {
					if _, err := w.BuildObject(KindLighthouse, tile, InvalidTown, ctx); err == nil {
						w.progressStep()
						toBuild--
						break
					}
				}
			}
			tile = Pt{tile.X + lighthouseWalkDir[dir].X, tile.Y + lighthouseWalkDir[dir].Y}
			if !w.grid.InBounds(tile) {
				break
			}
		}
	}
}

func (w *World) randomTile() Pt {
	idx := w.rng.NextMax(w.cfg.SizeX * w.cfg.SizeY)
	return Pt{X: idx % w.cfg.SizeX, Y: idx / w.cfg.SizeX}
}

func (w *World) progressTotal(total int) {
	if w.progress != nil {
		w.progress.SetTotal(genProgressClass, total)
	}
}

func (w *World) progressStep() {
	if w.progress != nil {
		w.progress.Step(genProgressClass)
	}
}
