package world

import "strings"

// Pt is a tile coordinate on the map grid.
type Pt struct {
	X int
	Y int
}

// Rect is a tile-aligned rectangle: origin plus extent. Extents are
// always >= 1; a 1x1 rect is a single tile.
type Rect struct {
	Origin Pt
	W      int
	H      int
}

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.Origin.X && p.X < r.Origin.X+r.W &&
		p.Y >= r.Origin.Y && p.Y < r.Origin.Y+r.H
}

func (r Rect) Area() int { return r.W * r.H }

// Each walks the rect in row-major order. The callback returning false
// stops the walk early.
func (r Rect) Each(fn func(p Pt) bool) {
	for y := r.Origin.Y; y < r.Origin.Y+r.H; y++ {
		for x := r.Origin.X; x < r.Origin.X+r.W; x++ {
			if !fn(Pt{x, y}) {
				return
			}
		}
	}
}

func (r Rect) Intersects(o Rect) bool {
	return r.Origin.X < o.Origin.X+o.W && o.Origin.X < r.Origin.X+r.W &&
		r.Origin.Y < o.Origin.Y+o.H && o.Origin.Y < r.Origin.Y+r.H
}

// Money is a signed amount; negative command costs are income for the
// acting company and are deliberately not clamped.
type Money int64

// Date counts simulation days since world creation.
type Date int32

// Owner identifies who holds a tile: a company slot, a town, or nobody.
type Owner uint8

const (
	MaxCompanies = 15

	OwnerTown    Owner = 0x0F
	OwnerNone    Owner = 0x10
	OwnerInvalid Owner = 0xFF
)

func (o Owner) IsCompany() bool { return o < MaxCompanies }

// TownID indexes the town table; 0 is never a valid town.
type TownID uint16

const InvalidTown TownID = 0

// ObjectID is a stable handle into the object pool; 0 is never live.
type ObjectID uint32

const InvalidObject ObjectID = 0

// Cargo kinds handled by the tile operation set.
const (
	CargoPassengers = "PASSENGERS"
	CargoMail       = "MAIL"
)

// Terrain themes. Toyland disables the placement generator outright;
// tropic suppresses lighthouses.
const (
	ThemeTemperate = "TEMPERATE"
	ThemeArctic    = "ARCTIC"
	ThemeTropic    = "TROPIC"
	ThemeToyland   = "TOYLAND"
)

// CanonicalTheme maps a theme name in any letter case to its canonical
// form; the second result reports whether the name is a known theme.
func CanonicalTheme(name string) (string, bool) {
	switch t := strings.ToUpper(strings.TrimSpace(name)); t {
	case ThemeTemperate, ThemeArctic, ThemeTropic, ThemeToyland:
		return t, true
	default:
		return "", false
	}
}
