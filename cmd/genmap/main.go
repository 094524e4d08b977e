package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tilemark.dev/internal/persistence/indexdb"
	"tilemark.dev/internal/sim/catalogs"
	"tilemark.dev/internal/sim/tuning"
	"tilemark.dev/internal/sim/world"
)

// genmap runs the world generator headlessly: terrain, a seed town, and
// the object placement pass. Useful for tuning the generator and for
// recording reference runs in the index DB.
func main() {
	var (
		worldID   = flag.String("world", "genmap", "world id for the index record")
		configDir = flag.String("configs", "./configs", "config directory")
		seed      = flag.Int64("seed", 0, "world seed override (0: use tuning)")
		sizeX     = flag.Int("size_x", 0, "map width override (0: use tuning)")
		sizeY     = flag.Int("size_y", 0, "map height override (0: use tuning)")
		theme     = flag.String("theme", "", "theme override (temperate, arctic, tropic, toyland)")
		dbPath    = flag.String("db", "", "optional sqlite index to record the run into")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[genmap] ", log.LstdFlags)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tune, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	cfg := world.WorldConfig{
		ID:         *worldID,
		TickRateHz: tune.TickRateHz,
		SizeX:      tune.Map.SizeX,
		SizeY:      tune.Map.SizeY,
		Seed:       tune.Map.Seed,
		HardEdges:  tune.Map.HardEdges,
		Theme:      tune.Map.Theme,
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *sizeX != 0 {
		cfg.SizeX = *sizeX
	}
	if *sizeY != 0 {
		cfg.SizeY = *sizeY
	}
	if t := strings.TrimSpace(*theme); t != "" {
		canon, ok := world.CanonicalTheme(t)
		if !ok {
			logger.Fatalf("unknown theme %q", t)
		}
		cfg.Theme = canon
	}

	w, err := world.New(cfg, tune, cats)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}
	w.AddTown("Seedville", world.Pt{X: cfg.SizeX / 2, Y: cfg.SizeY / 2})

	w.SetProgressSink(&tallyProgress{log: logger})
	w.GenerateObjects()

	towers := w.Objects().Count(world.KindTransmitter)
	lights := w.Objects().Count(world.KindLighthouse)
	fmt.Printf("world %s: seed=%d size=%dx%d theme=%s\n", cfg.ID, cfg.Seed, cfg.SizeX, cfg.SizeY, cfg.Theme)
	fmt.Printf("objects: %d live (%d transmitters, %d lighthouses)\n", w.Objects().Live(), towers, lights)
	fmt.Printf("digest: %s\n", w.StateDigest())

	if *dbPath != "" {
		idx, err := indexdb.Open(*dbPath)
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		idx.RecordWorldgen(indexdb.WorldgenRun{
			WorldID:      cfg.ID,
			Seed:         cfg.Seed,
			SizeX:        cfg.SizeX,
			SizeY:        cfg.SizeY,
			Transmitters: towers,
			Lighthouses:  lights,
		})
		idx.Flush()
		if err := idx.Close(); err != nil {
			logger.Fatalf("close index: %v", err)
		}
		logger.Printf("run recorded in %s", *dbPath)
	}
}

type tallyProgress struct {
	log  *log.Logger
	done int
}

func (p *tallyProgress) SetTotal(class string, total int) {
	p.log.Printf("%s: target %d", class, total)
}

func (p *tallyProgress) Step(class string) {
	p.done++
	if p.done%10 == 0 {
		p.log.Printf("%s: placed %d", class, p.done)
	}
}
