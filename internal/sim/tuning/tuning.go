package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz  int `yaml:"tick_rate_hz"`
	DaysPerYear int `yaml:"days_per_year"`

	Map MapTuning `yaml:"map"`
	Gen GenTuning `yaml:"worldgen"`

	Economy EconomyTuning `yaml:"economy"`

	AuditEveryTicks int `yaml:"audit_flush_ticks"`

	Digest string `yaml:"-"`
}

type MapTuning struct {
	SizeX     int    `yaml:"size_x"`
	SizeY     int    `yaml:"size_y"`
	Seed      int64  `yaml:"seed"`
	HardEdges bool   `yaml:"hard_edges"`
	Theme     string `yaml:"theme"` // TEMPERATE, ARCTIC, TROPIC, TOYLAND
}

type GenTuning struct {
	TransmitterBase  int `yaml:"transmitter_base"`  // target count on a 256x256 map
	TransmitterTries int `yaml:"transmitter_tries"` // attempt budget on a 256x256 map
	LighthouseBase   int `yaml:"lighthouse_base"`   // pre-roll base for the border-scaled target
	LighthouseTries  int `yaml:"lighthouse_tries"`  // fixed outer attempt budget
}

type EconomyTuning struct {
	ClearGrassCost  int64 `yaml:"clear_grass_cost"`  // generic landscape-clear cost per tile
	FoundationCost  int64 `yaml:"foundation_cost"`   // autoslope terraform charge
	StartingBalance int64 `yaml:"starting_balance"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	sum := sha256.Sum256(raw)
	t.Digest = hex.EncodeToString(sum[:])
	return t, nil
}

// Defaults mirror configs/tuning.yaml so tests can run without the file.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      5,
		DaysPerYear:     365,
		Map: MapTuning{
			SizeX:     256,
			SizeY:     256,
			Seed:      1337,
			HardEdges: false,
			Theme:     "TEMPERATE",
		},
		Gen: GenTuning{
			TransmitterBase:  15,
			TransmitterTries: 1000,
			LighthouseBase:   7,
			LighthouseTries:  1000,
		},
		Economy: EconomyTuning{
			ClearGrassCost:  10,
			FoundationCost:  100,
			StartingBalance: 100000,
		},
		AuditEveryTicks: 1,
	}
}
