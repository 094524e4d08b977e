package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Objects ObjectCatalog
}

type ObjectCatalog struct {
	// Palette is the deterministic kind ordering; Index maps kind id to
	// its palette position, used as the compact kind tag on tiles.
	Palette []string
	Index   map[string]uint8
	Defs    map[string]ObjectDef

	PaletteDigest string
	DefsDigest    string
}

// ObjectDef is the static per-kind configuration. It is read-only at
// runtime; the simulation never mutates it.
type ObjectDef struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	SizeX     int      `json:"size_x"`
	SizeY     int      `json:"size_y"`
	BuildCost int64    `json:"build_cost"` // per footprint tile
	ClearCost int64    `json:"clear_cost"` // per footprint tile
	MaxCount  int      `json:"max_count"`  // 0 = limited only by the pool
	Enabled   bool     `json:"enabled"`
	Flags     []string `json:"flags,omitempty"`
}

// Kind flags.
const (
	FlagOnlyWorldGen     = "ONLY_WORLDGEN" // placeable only during world creation, no acting company
	FlagOnlyInGame       = "ONLY_IN_GAME"  // placeable only during normal play by a real company
	FlagAutoRemove       = "AUTO_REMOVE"   // may be cleared automatically by overbuilding
	FlagNoFoundation     = "NO_FOUNDATION" // never draws a flattening foundation
	FlagClearIncome      = "CLEAR_INCOME"  // clearing yields income instead of cost
	FlagAllowUnderBridge = "UNDER_BRIDGE"  // usable beneath an overhead crossing
)

func (d ObjectDef) HasFlag(flag string) bool {
	for _, f := range d.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func (d ObjectDef) FootprintArea() int { return d.SizeX * d.SizeY }

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadObjects(filepath.Join(configDir, "objects.json"), &c.Objects); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadObjects(path string, out *ObjectCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ObjectDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("objects.json: %w", err)
	}
	out.Defs = map[string]ObjectDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("objects.json: empty id")
		}
		if d.SizeX < 1 || d.SizeY < 1 || d.SizeX > 15 || d.SizeY > 15 {
			return fmt.Errorf("objects.json: %s: bad footprint %dx%d", d.ID, d.SizeX, d.SizeY)
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("objects.json: duplicate id %s", d.ID)
		}
		for _, f := range d.Flags {
			if !validFlags[f] {
				return fmt.Errorf("objects.json: %s: unknown flag %q", d.ID, f)
			}
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out.Palette = ids
	out.Index = make(map[string]uint8, len(ids))
	for i, id := range ids {
		if i > 0xFF {
			return fmt.Errorf("objects.json: too many kinds")
		}
		out.Index[id] = uint8(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

var validFlags = map[string]bool{
	FlagOnlyWorldGen:     true,
	FlagOnlyInGame:       true,
	FlagAutoRemove:       true,
	FlagNoFoundation:     true,
	FlagClearIncome:      true,
	FlagAllowUnderBridge: true,
}
