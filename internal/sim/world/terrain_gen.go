package world

// Deterministic terrain synthesis for fresh worlds. Heights come from
// hashed lattice noise so the same seed always produces the same map;
// tiles at or below sea level become sea.

const (
	seaLevel  = 1
	maxHeight = 10

	heightLatticeStep = 16
)

func hash2(seed int64, x, y int) uint64 {
	h := uint64(seed) ^ 0x9e3779b97f4a7c15
	h ^= uint64(uint32(x)) * 0xbf58476d1ce4e5b9
	h = (h ^ (h >> 31)) * 0x94d049bb133111eb
	h ^= uint64(uint32(y)) * 0xff51afd7ed558ccd
	h = (h ^ (h >> 33)) * 0xc4ceb9fe1a85ec53
	return h ^ (h >> 29)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// latticeHeight interpolates hashed corner values of the coarse lattice
// cell containing (x, y). Integer bilinear blend, range [0, maxHeight].
func latticeHeight(seed int64, x, y int) int {
	lx := floorDiv(x, heightLatticeStep)
	ly := floorDiv(y, heightLatticeStep)
	fx := mod(x, heightLatticeStep)
	fy := mod(y, heightLatticeStep)

	corner := func(cx, cy int) int {
		return int(hash2(seed, cx, cy) % uint64(maxHeight+1))
	}
	h00 := corner(lx, ly)
	h10 := corner(lx+1, ly)
	h01 := corner(lx, ly+1)
	h11 := corner(lx+1, ly+1)

	top := h00*(heightLatticeStep-fx) + h10*fx
	bot := h01*(heightLatticeStep-fx) + h11*fx
	return (top*(heightLatticeStep-fy) + bot*fy) / (heightLatticeStep * heightLatticeStep)
}

// GenerateTerrain fills the grid from the seed. With hard edges the
// outermost ring becomes void and the ring inside it tends to sea, so
// coastlines hug the map border the way the lighthouse pass expects.
func GenerateTerrain(g *Grid, seed int64, hardEdges bool) {
	for y := 0; y < g.SizeY; y++ {
		for x := 0; x < g.SizeX; x++ {
			p := Pt{x, y}
			c := g.Cell(p)
			*c = Cell{Owner: OwnerNone, Object: InvalidObject}

			if hardEdges && (x == 0 || y == 0 || x == g.SizeX-1 || y == g.SizeY-1) {
				c.Type = TileVoid
				continue
			}

			h := latticeHeight(seed, x, y)

			// Pull the border down toward the sea.
			edge := x
			if y < edge {
				edge = y
			}
			if g.SizeX-1-x < edge {
				edge = g.SizeX - 1 - x
			}
			if g.SizeY-1-y < edge {
				edge = g.SizeY - 1 - y
			}
			if edge < 8 {
				h = h * edge / 8
			}

			if h <= seaLevel {
				c.Type = TileWater
				c.Height = seaLevel
				c.Water = WaterClassSea
				continue
			}

			c.Type = TileClear
			c.Height = uint8(h)
			c.Slope = slopeFromNeighbours(seed, x, y, h)
		}
	}
}

// slopeFromNeighbours derives a corner mask from the height field so
// the map has believable inclines without storing per-corner heights.
func slopeFromNeighbours(seed int64, x, y, h int) Slope {
	var s Slope
	if latticeHeight(seed, x, y-1) > h {
		s |= SlopeN
	}
	if latticeHeight(seed, x+1, y) > h {
		s |= SlopeE
	}
	if latticeHeight(seed, x, y+1) > h {
		s |= SlopeS
	}
	if latticeHeight(seed, x-1, y) > h {
		s |= SlopeW
	}
	if latticeHeight(seed, x, y-1) > h+1 || latticeHeight(seed, x+1, y) > h+1 ||
		latticeHeight(seed, x, y+1) > h+1 || latticeHeight(seed, x-1, y) > h+1 {
		s |= SlopeSteep
	}
	return s
}
